package knowledge

import "strings"

// Collect flattens v into trimmed, non-empty strings.
//
//   - Scalar: the trimmed text.
//   - Sequence: every item, recursively.
//   - Keyed: every field whose value is a Scalar or Sequence; a Keyed field
//     contributes only through one of three recognized shapes, checked in
//     order: {aliases: ...}, {keywords: ...}, {name: ..., aliases|keywords: ...}.
//
// Anything else (Null, Literal, unrecognized Keyed shapes) yields nothing.
func Collect(v Value) []string {
	var out []string
	collectInto(v, &out)
	return out
}

func collectInto(v Value, out *[]string) {
	switch v.Kind {
	case Scalar:
		appendTrimmed(out, v.Text)
	case Sequence:
		for _, item := range v.Items {
			collectInto(item, out)
		}
	case Keyed:
		for _, k := range v.Keys {
			f := v.Fields[k]
			switch f.Kind {
			case Scalar, Sequence:
				collectInto(f, out)
			case Keyed:
				switch {
				case f.Has("aliases"):
					collectInto(f.Field("aliases"), out)
				case f.Has("keywords"):
					collectInto(f.Field("keywords"), out)
				case f.Has("name"):
					appendTrimmed(out, f.Field("name").String())
					collectInto(aliasesOrKeywords(f), out)
				}
			}
		}
	}
}

// aliasesOrKeywords returns the "aliases" field when declared, otherwise
// the "keywords" field.
func aliasesOrKeywords(v Value) Value {
	if v.Has("aliases") {
		return v.Field("aliases")
	}
	return v.Field("keywords")
}

// displayName turns a section key such as "google_deepmind" into the
// keyword "google deepmind".
func displayName(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
}

func appendTrimmed(out *[]string, s string) {
	if s = strings.TrimSpace(s); s != "" {
		*out = append(*out, s)
	}
}
