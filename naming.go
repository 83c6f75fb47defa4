package wal

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultNaming is the built-in NamingStrategy: a fixed-width,
// zero-padded log number with an optional prefix and suffix, and
// nothing else -- recovering a logNumber from a name never needs a
// wall-clock time.
type defaultNaming struct {
	prefix string
	suffix string
}

// DefaultNaming returns a NamingStrategy that names segment n
// "<prefix><016d><suffix>", e.g. DefaultNaming("", ".wal") produces
// "0000000000000003.wal" for logNumber 3.
func DefaultNaming(prefix, suffix string) NamingStrategy {
	return defaultNaming{prefix: prefix, suffix: suffix}
}

func (n defaultNaming) Generate(logNumber uint64) string {
	return fmt.Sprintf("%s%016d%s", n.prefix, logNumber, n.suffix)
}

func (n defaultNaming) IsJournal(name string) bool {
	_, err := n.ExtractLogNumber(name)
	return err == nil
}

func (n defaultNaming) ExtractLogNumber(name string) (uint64, error) {
	rest, ok := strings.CutPrefix(name, n.prefix)
	if !ok {
		return 0, fmt.Errorf("wal: name %q missing prefix %q", name, n.prefix)
	}
	rest, ok = strings.CutSuffix(rest, n.suffix)
	if !ok {
		return 0, fmt.Errorf("wal: name %q missing suffix %q", name, n.suffix)
	}
	if len(rest) != 16 {
		return 0, fmt.Errorf("wal: name %q has malformed log number field %q", name, rest)
	}
	return strconv.ParseUint(rest, 10, 64)
}
