// Command tally reconciles an invoice inbox against the archive and the
// ledger, then archives and records whatever is genuinely new.
package main
