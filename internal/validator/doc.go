// Package validator checks HTML-like text for tag balance problems.
//
// The Validator scans a document in three phases and reports the first
// problem it finds:
//
//  1. A malformed-chevron pre-scan rejects text where a tag lost its
//     opening or closing angle bracket ("<div class=x" at the end of the
//     document, or "div>" before any "<").
//  2. A left-to-right tag scan checks every tag name against the known tag
//     set and keeps a stack of open tags, reporting closing tags without an
//     opener and closing tags that do not match the innermost open tag.
//  3. Tags still open at the end of the scan are reported as unclosed.
//
// Both scans are regular-expression heuristics, not an HTML grammar. They
// tolerate tag soup and can be fooled by "<" or ">" inside attribute values
// or script bodies.
//
// # Usage
//
//	v := validator.New(validator.WithExtraTags([]string{"my-widget"}))
//	res := v.Validate("<div><p>Hello</div></p>")
//	if !res.Valid {
//	    fmt.Println(res.Message, validator.Excerpt(doc, res.Position, validator.DefaultExcerptRadius))
//	}
//
// A Validator is immutable after New returns and is safe for concurrent use.
package validator
