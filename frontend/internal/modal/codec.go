package modal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Encode packs the state into a cookie-safe string.
func Encode(s State) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func Decode(raw string) (State, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return State{}, fmt.Errorf("modal cookie is not base64: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("modal cookie is not json: %w", err)
	}
	return s, nil
}

var kindMarks = map[Kind]string{
	KindInfo:       "i",
	KindSuccess:    "+",
	KindError:      "x",
	KindWarning:    "!",
	KindConnection: "~",
}

// WriteText renders an open modal for a terminal. A closed modal prints nothing.
func WriteText(w io.Writer, s State) error {
	if !s.Open {
		return nil
	}
	mark, ok := kindMarks[s.Kind]
	if !ok {
		mark = kindMarks[KindInfo]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", mark, s.Title)
	if s.Message != "" {
		for _, line := range strings.Split(s.Message, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	if s.ShowConfirm {
		fmt.Fprintf(&b, "    (%s / %s)\n", s.ConfirmText, s.CancelText)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
