// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/go-vici/vici"
)

// messageFromJSON decodes a JSON object into a *vici.Message: string
// values become key/value leaves, arrays of strings become lists, and
// nested objects become sections. Key order follows Go's map iteration,
// which is acceptable for a hand-authored request body.
func messageFromJSON(b []byte) (*vici.Message, error) {
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	return objectToMessage(obj)
}

func objectToMessage(obj map[string]any) (*vici.Message, error) {
	m := vici.NewMessage()
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			m.AddKVString(k, val)
		case map[string]any:
			sub, err := objectToMessage(val)
			if err != nil {
				return nil, err
			}
			m.AddSection(k, sub)
		case []any:
			items, err := cast.ToStringSliceE(val)
			if err != nil {
				return nil, fmt.Errorf("list %q: %w", k, err)
			}
			m.AddListStrings(k, items)
		default:
			m.AddKVString(k, fmt.Sprint(val))
		}
	}
	return m, nil
}

// messageToJSON renders a *vici.Message tree as an indented JSON object,
// the inverse shape of messageFromJSON. Sections recurse; lists become
// arrays of strings; key/value leaves become strings.
func messageToJSON(m *vici.Message) ([]byte, error) {
	return json.MarshalIndent(messageToObject(m), "", "  ")
}

func messageToObject(m *vici.Message) map[string]any {
	obj := make(map[string]any, m.Len())
	for _, name := range m.Names() {
		if v, ok := m.GetString(name); ok {
			obj[name] = v
			continue
		}
		if sub, ok := m.Section(name); ok {
			obj[name] = messageToObject(sub)
			continue
		}
		if items, ok := m.List(name); ok {
			strs := make([]string, len(items))
			for i, it := range items {
				strs[i] = string(it)
			}
			obj[name] = strs
		}
	}
	return obj
}
