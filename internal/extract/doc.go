// Package extract pulls structured fields out of invoice documents.
//
// The default implementation sends the document bytes to Gemini and asks for a
// fixed JSON shape; amounts come back as strings and are parsed into decimals
// so no float ever touches a monetary value. The workflow treats extraction as
// best effort: a failed extraction leaves the fields empty but does not stop
// the invoice from being archived and recorded.
package extract
