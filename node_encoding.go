package xpquery

import "golang.org/x/text/encoding/ianaindex"

// SetCharacterSet normalizes label (e.g. "utf8", "ISO-8859-1") to its
// canonical IANA name and records it as the document's declared source
// encoding, exposed via Document.CharacterSet/InputEncoding. Grounded on
// the teacher's decoder.go charset handling.
func (d *documentNode) SetCharacterSet(label string) error {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		d.encoding = label
		return err
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		d.encoding = label
		return err
	}
	d.encoding = name
	return nil
}
