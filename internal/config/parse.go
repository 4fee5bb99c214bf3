package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseKeyValue reads "KEY value" lines. The key ends at the first space or
// tab; the rest of the line, trimmed, is the value. Blank lines and lines
// starting with '#' are skipped. A repeated key keeps its last value.
func parseKeyValue(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sep := strings.IndexAny(line, " \t")
		if sep < 0 {
			return nil, fmt.Errorf("line %d: key %q has no value", lineNum, line)
		}
		values[line[:sep]] = strings.TrimSpace(line[sep+1:])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// parseYAML decodes a YAML mapping with lower-case keys (log_file_dir, ...).
// Scalars are kept in their textual form and lists are joined with commas,
// so both formats share one validation path.
func parseYAML(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(k)
		switch tv := v.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, len(tv))
			for i, p := range tv {
				parts[i] = fmt.Sprint(p)
			}
			values[key] = strings.Join(parts, ",")
		case map[string]interface{}:
			return nil, fmt.Errorf("key %q: nested mappings are not supported", k)
		default:
			values[key] = fmt.Sprint(tv)
		}
	}
	return values, nil
}

// isYAML reports whether path should be decoded as YAML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// encodeKeyValue renders values in "KEY value" form, known keys first.
func encodeKeyValue(values map[string]string) []byte {
	var buf bytes.Buffer
	for _, key := range orderedKeys(values) {
		fmt.Fprintf(&buf, "%s %s\n", key, values[key])
	}
	return buf.Bytes()
}

// encodeYAML renders values as a YAML mapping with lower-case keys.
func encodeYAML(values map[string]string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range orderedKeys(values) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: strings.ToLower(key)},
			&yaml.Node{Kind: yaml.ScalarNode, Value: values[key]},
		)
	}
	return yaml.Marshal(node)
}

func orderedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	rank := make(map[string]int, len(Keys))
	for i, k := range Keys {
		rank[k] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
