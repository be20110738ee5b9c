package editor

import (
	"fmt"
	"sort"
)

// Stubs are example command skeletons that can be inserted into a script.
var Stubs = map[string]string{
	"simple": `def cmd_my_command(ensoapi):
    """My command description"""
    ensoapi.display_message("Hello world!")`,

	"varargs": `def cmd_my_command(ensoapi, argument):
    """My command description"""
    ensoapi.display_message(argument)`,

	"boundargs": `def cmd_my_command(ensoapi, argument):
    """My command description"""
    ensoapi.display_message(argument)

cmd_my_command.valid_args = ["arg1", "arg2"]`,
}

// StubKinds lists the stub names in a stable order.
func StubKinds() []string {
	out := make([]string, 0, len(Stubs))
	for k := range Stubs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// insertAt inserts s into text at byte offset, clamped to the text bounds.
func insertAt(text, s string, offset int) string {
	if offset < 0 || offset > len(text) {
		offset = len(text)
	}
	return text[:offset] + s + text[offset:]
}

func stub(kind string) (string, error) {
	s, ok := Stubs[kind]
	if !ok {
		return "", fmt.Errorf("editor: unknown stub %q", kind)
	}
	return s, nil
}
