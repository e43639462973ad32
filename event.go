package engine

import (
	"github.com/korvits/go-event-rule-engine/utils"
)

// DynamicMap is a reference Event implementation for arbitrary JSON-like structures
type DynamicMap map[string]interface{}

// Select implements Selector
func (d DynamicMap) Select(key string) (interface{}, bool) {
	return utils.GetField(key, d)
}
