package services

import (
	"strconv"
	"unicode/utf8"

	"github.com/paket-core/funder/internal/common"
)

type fieldLimit struct {
	name  string
	value *string
	max   int
}

func limit(name, value string, max int) fieldLimit {
	return fieldLimit{name: name, value: &value, max: max}
}

// checkLengths rejects the first field longer than its column allows.
// Nil values are not supplied and pass.
func checkLengths(fields ...fieldLimit) error {
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if n := utf8.RuneCountInString(*f.value); n > f.max {
			return common.WithMetadata(common.KindInvalidArgument,
				f.name+" is longer than "+strconv.Itoa(f.max)+" characters",
				map[string]string{"field": f.name, "max": strconv.Itoa(f.max), "length": strconv.Itoa(n)})
		}
	}
	return nil
}
