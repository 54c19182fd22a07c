package netpie

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// DefaultBaseURL is the root of the NETPIE device API
const DefaultBaseURL = "https://api.netpie.io/v2/device"

// Operation describes one operation of the NETPIE API. Both operations run
// through the same pipeline and only differ in their descriptor.
type Operation struct {
	Resource string
	Name     string
	Method   string
	Path     string
	// QueryParameter names the query parameter which carries the item's
	// alias or topic
	QueryParameter string

	target   func(p Parameters) string
	resolve  func(item Item, index int) (Parameters, error)
	body     func(p Parameters, index int) (body interface{}, jsonMode bool, headers map[string]string, err error)
	simplify func(response Response, p Parameters) interface{}
	hint     string
}

// Key returns the operation key, e.g. "shadow.get"
func (o *Operation) Key() string {
	return o.Resource + "." + o.Name
}

// Hint returns the human readable failure hint for the item at index
func (o *Operation) Hint(index int) string {
	return fmt.Sprintf(o.hint, index+1)
}

// ShadowGet reads a value from the device shadow
var ShadowGet = &Operation{
	Resource:       "shadow",
	Name:           "get",
	Method:         http.MethodGet,
	Path:           "/shadow/data",
	QueryParameter: "alias",
	target:         func(p Parameters) string { return p.Alias },
	resolve:        resolveShadowParameters,
	body: func(p Parameters, index int) (interface{}, bool, map[string]string, error) {
		return nil, true, nil, nil
	},
	simplify: simplifyShadow,
	hint:     "Failed to read shadow data for item %d. Check that the alias exists and that the device credentials are valid.",
}

// MessagePublish publishes a message to a device topic
var MessagePublish = &Operation{
	Resource:       "message",
	Name:           "publish",
	Method:         http.MethodPut,
	Path:           "/message",
	QueryParameter: "topic",
	target:         func(p Parameters) string { return p.Topic },
	resolve:        resolveMessageParameters,
	body:           messageBody,
	simplify:       simplifyMessage,
	hint:           "Failed to publish message for item %d. Check that the topic is valid and that the device credentials are valid.",
}

var operations = map[string]*Operation{
	ShadowGet.Key():      ShadowGet,
	MessagePublish.Key(): MessagePublish,
}

// LookupOperation returns the operation for resource and name
func LookupOperation(resource, name string) (*Operation, bool) {
	op, ok := operations[resource+"."+name]
	return op, ok
}

// Operations returns the keys of all supported operations in sorted order
func Operations() []string {
	keys := make([]string, 0, len(operations))
	for key := range operations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Resolve resolves the parameters of the item at index
func (o *Operation) Resolve(item Item, index int) (Parameters, error) {
	return o.resolve(item, index)
}

// BuildRequest maps resolved parameters to a request descriptor. It is a pure
// function of its input: equal parameters produce equal descriptors.
func (o *Operation) BuildRequest(baseURL string, p Parameters, index int) (RequestDescriptor, error) {
	body, jsonMode, headers, err := o.body(p, index)
	if err != nil {
		return RequestDescriptor{}, err
	}
	return RequestDescriptor{
		Method:   o.Method,
		URL:      strings.TrimSuffix(baseURL, "/") + o.Path,
		Query:    map[string]string{o.QueryParameter: o.target(p)},
		Body:     body,
		Headers:  headers,
		JSONMode: jsonMode,
		Timeout:  p.Timeout,
	}, nil
}

// Simplify maps a raw response to the reduced output shape
func (o *Operation) Simplify(response Response, p Parameters) interface{} {
	return o.simplify(response, p)
}

func messageBody(p Parameters, index int) (interface{}, bool, map[string]string, error) {
	headers := map[string]string{"Content-Type": p.ContentType}
	if p.ContentType != ContentTypeJSON {
		return p.Payload, false, headers, nil
	}
	var body interface{}
	if err := json.Unmarshal([]byte(p.Payload), &body); err != nil {
		return nil, false, nil, &PayloadParseError{ItemIndex: index, Err: err}
	}
	return body, true, headers, nil
}
