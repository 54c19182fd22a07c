package netpie

import (
	"fmt"
	"strconv"
)

// simplifyShadow returns {alias, value}. The value is taken, in this order, from
// the response's "value" field, from the field named like the alias, from the
// response itself if it is an object, or from the response as string.
func simplifyShadow(response Response, p Parameters) interface{} {
	var value interface{}
	object, isObject := response.(map[string]interface{})
	switch {
	case isObject && object["value"] != nil:
		value = object["value"]
	case isObject && object[p.Alias] != nil:
		value = object[p.Alias]
	case isObject:
		value = object
	default:
		if list, ok := response.([]interface{}); ok {
			value = list
		} else {
			value = stringify(response)
		}
	}
	return map[string]interface{}{
		"alias": p.Alias,
		"value": value,
	}
}

// simplifyMessage returns {published, topic, result}, with result "ok" unless the
// response says otherwise
func simplifyMessage(response Response, p Parameters) interface{} {
	var result interface{} = "ok"
	if object, ok := response.(map[string]interface{}); ok && object["result"] != nil {
		result = object["result"]
	}
	return map[string]interface{}{
		"published": true,
		"topic":     p.Topic,
		"result":    result,
	}
}

func stringify(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
