// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "strings"

const sharedPrefix = "$share/"

// IsTopicFilterMatch checks if a topic name matches a topic filter.
func IsTopicFilterMatch(topicFilter, topicName string) bool {
	if tf, ok := strings.CutPrefix(topicFilter, sharedPrefix); ok {
		idx := strings.Index(tf, "/")
		if idx == -1 {
			return false
		}
		topicFilter = tf[idx+1:]
	}

	// Wildcards never match topics reserved by the server.
	if strings.HasPrefix(topicName, "$") &&
		(strings.HasPrefix(topicFilter, "#") ||
			strings.HasPrefix(topicFilter, "+")) {
		return false
	}

	filters := strings.Split(topicFilter, "/")
	names := strings.Split(topicName, "/")

	for i, filter := range filters {
		if filter == "#" {
			return i == len(filters)-1
		}
		if filter == "+" {
			if i >= len(names) {
				return false
			}
			continue
		}
		if i >= len(names) || filter != names[i] {
			return false
		}
	}
	return len(filters) == len(names)
}

// validTopicFilter reports whether filter is a well-formed subscription
// filter: non-empty, '#' only as the whole last level, '+' only as a whole
// level.
func validTopicFilter(filter string) bool {
	if filter == "" {
		return false
	}
	levels := strings.Split(filter, "/")
	for i, level := range levels {
		switch {
		case level == "#":
			if i != len(levels)-1 {
				return false
			}
		case level == "+":
		case strings.ContainsAny(level, "#+"):
			return false
		}
	}
	return true
}

// validTopicName reports whether name can be published to.
func validTopicName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "#+")
}
