package protocol

import (
	"sort"

	"github.com/invopop/jsonschema"
)

// Catalogue returns a zero value of every message variant, ordered by kind.
func Catalogue() []Message {
	out := make([]Message, 0, len(decoders))
	for _, decode := range decoders {
		m, _ := decode(nil)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// Schema describes the message catalogue as a JSON schema. Each variant is
// one alternative of the top level oneOf, titled with its kind name.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Message",
		Description: "Messages exchanged between duel peers",
	}
	for _, m := range Catalogue() {
		s := r.Reflect(m)
		s.Version = ""
		s.Title = m.Kind().String()
		root.OneOf = append(root.OneOf, s)
	}
	return root
}
