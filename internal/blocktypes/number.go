package blocktypes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number decodes a JSON field that the portal may emit as either a bare
// number or a quoted decimal/hex string — the wire format's concession to
// values that don't always fit safely in a double. It marshals back out
// as a plain JSON number, which is all a uint64 block/transaction/log
// index ever needs.
type Number uint64

func (n Number) Uint64() uint64 { return uint64(n) }

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*n = 0
		return nil
	}

	var v uint64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return fmt.Errorf("blocktypes: invalid number %q: %w", s, err)
	}
	*n = Number(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(n))
}
