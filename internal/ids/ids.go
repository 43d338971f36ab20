// Package ids issues entity identifiers. KSUIDs sort by creation time, so ordering by id
// is ordering by recency.
package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}
