// Package document loads the text that tagcheck validates.
//
// A Document is read from a file or standard input, limited in size,
// decoded to UTF-8 when the bytes declare or look like another charset,
// and fingerprinted with a SHA3-256 hash of its raw bytes so that repeated
// checks of unchanged content can be recognised in the history database.
//
// Expand turns a mixed list of files and directories into the ordered list
// of HTML files to check.
package document
