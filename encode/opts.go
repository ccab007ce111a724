package encode

type EncodeOption func(*EncState)

// Wire produces compact single-line output.
func Wire(v bool) EncodeOption {
	return func(es *EncState) { es.wire = v }
}

func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) { es.Color = c.Color }
}
