package catalog

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Minimal XML-RPC codec covering the value types the catalog actually uses:
// string, int, double, boolean, base64, struct, and array. Values decode to
// string, int64, float64, bool, []byte, map[string]any, and []any.

// Fault is a remote <fault> response.
type Fault struct {
	Code    int64
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xml-rpc fault %d: %s", f.Code, f.Message)
}

func marshalCall(method string, args []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	if err := xml.EscapeText(&buf, []byte(method)); err != nil {
		return nil, err
	}
	buf.WriteString("</methodName><params>")
	for _, arg := range args {
		buf.WriteString("<param>")
		if err := writeValue(&buf, arg); err != nil {
			return nil, err
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	buf.WriteString("<value>")
	switch value := v.(type) {
	case string:
		buf.WriteString("<string>")
		if err := xml.EscapeText(buf, []byte(value)); err != nil {
			return err
		}
		buf.WriteString("</string>")
	case int:
		fmt.Fprintf(buf, "<int>%d</int>", value)
	case int64:
		fmt.Fprintf(buf, "<int>%d</int>", value)
	case float64:
		fmt.Fprintf(buf, "<double>%g</double>", value)
	case bool:
		if value {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case []byte:
		buf.WriteString("<base64>")
		buf.WriteString(base64.StdEncoding.EncodeToString(value))
		buf.WriteString("</base64>")
	case []any:
		buf.WriteString("<array><data>")
		for _, item := range value {
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
	case map[string]any:
		// Sorted keys keep request bodies deterministic.
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteString("<struct>")
		for _, k := range keys {
			buf.WriteString("<member><name>")
			if err := xml.EscapeText(buf, []byte(k)); err != nil {
				return err
			}
			buf.WriteString("</name>")
			if err := writeValue(buf, value[k]); err != nil {
				return err
			}
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct>")
	default:
		return fmt.Errorf("xml-rpc: unsupported value type %T", v)
	}
	buf.WriteString("</value>")
	return nil
}

// parseResponse decodes a <methodResponse> document and returns its single
// parameter value. A <fault> response comes back as a *Fault error.
func parseResponse(r io.Reader) (any, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("xml-rpc: response has no params or fault")
			}
			return nil, fmt.Errorf("xml-rpc: parse response: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "methodResponse":
			continue
		case "params":
			return parseSingleParam(dec)
		case "fault":
			return nil, parseFault(dec)
		default:
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("xml-rpc: parse response: %w", err)
			}
		}
	}
}

func parseSingleParam(dec *xml.Decoder) (any, error) {
	start, err := nextStart(dec)
	if err != nil || start.Name.Local != "param" {
		return nil, fmt.Errorf("xml-rpc: expected param element")
	}
	start, err = nextStart(dec)
	if err != nil || start.Name.Local != "value" {
		return nil, fmt.Errorf("xml-rpc: expected value element")
	}
	return decodeValue(dec)
}

func parseFault(dec *xml.Decoder) error {
	start, err := nextStart(dec)
	if err != nil || start.Name.Local != "value" {
		return fmt.Errorf("xml-rpc: malformed fault")
	}
	value, err := decodeValue(dec)
	if err != nil {
		return fmt.Errorf("xml-rpc: decode fault: %w", err)
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("xml-rpc: fault value is not a struct")
	}
	fault := &Fault{}
	if code, ok := fields["faultCode"].(int64); ok {
		fault.Code = code
	}
	if msg, ok := fields["faultString"].(string); ok {
		fault.Message = msg
	}
	return fault
}

// decodeValue consumes the content of a <value> element whose start tag has
// already been read, through its end tag.
func decodeValue(dec *xml.Decoder) (any, error) {
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xml-rpc: decode value: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			inner, err := decodeTyped(dec, t)
			if err != nil {
				return nil, err
			}
			if err := consumeEnd(dec, "value"); err != nil {
				return nil, err
			}
			return inner, nil
		case xml.EndElement:
			// Untyped content inside <value> is a string.
			return text.String(), nil
		}
	}
}

func decodeTyped(dec *xml.Decoder, start xml.StartElement) (any, error) {
	switch start.Name.Local {
	case "string", "dateTime.iso8601":
		return readText(dec, start.Name.Local)
	case "int", "i4", "i8":
		text, err := readText(dec, start.Name.Local)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("xml-rpc: bad integer %q: %w", text, err)
		}
		return n, nil
	case "double":
		text, err := readText(dec, start.Name.Local)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("xml-rpc: bad double %q: %w", text, err)
		}
		return f, nil
	case "boolean":
		text, err := readText(dec, start.Name.Local)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(text) {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
		return nil, fmt.Errorf("xml-rpc: bad boolean %q", text)
	case "base64":
		text, err := readText(dec, start.Name.Local)
		if err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("xml-rpc: bad base64: %w", err)
		}
		return data, nil
	case "nil":
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return nil, nil
	case "struct":
		return decodeStruct(dec)
	case "array":
		return decodeArray(dec)
	default:
		return nil, fmt.Errorf("xml-rpc: unsupported value element <%s>", start.Name.Local)
	}
}

func decodeStruct(dec *xml.Decoder) (map[string]any, error) {
	result := make(map[string]any)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xml-rpc: decode struct: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "member" {
				return nil, fmt.Errorf("xml-rpc: unexpected <%s> in struct", t.Name.Local)
			}
			name, value, err := decodeMember(dec)
			if err != nil {
				return nil, err
			}
			result[name] = value
		case xml.EndElement:
			if t.Name.Local == "struct" {
				return result, nil
			}
		}
	}
}

func decodeMember(dec *xml.Decoder) (string, any, error) {
	var name string
	var value any
	var haveValue bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", nil, fmt.Errorf("xml-rpc: decode member: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				name, err = readText(dec, "name")
				if err != nil {
					return "", nil, err
				}
			case "value":
				value, err = decodeValue(dec)
				if err != nil {
					return "", nil, err
				}
				haveValue = true
			default:
				if err := dec.Skip(); err != nil {
					return "", nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "member" {
				if !haveValue {
					return "", nil, fmt.Errorf("xml-rpc: member %q has no value", name)
				}
				return name, value, nil
			}
		}
	}
}

func decodeArray(dec *xml.Decoder) ([]any, error) {
	var result []any
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xml-rpc: decode array: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "data":
				continue
			case "value":
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				result = append(result, value)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "array" {
				return result, nil
			}
		}
	}
}

func readText(dec *xml.Decoder, name string) (string, error) {
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("xml-rpc: read <%s>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if t.Name.Local == name {
				return text.String(), nil
			}
		case xml.StartElement:
			return "", fmt.Errorf("xml-rpc: unexpected <%s> inside <%s>", t.Name.Local, name)
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func consumeEnd(dec *xml.Decoder, name string) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("xml-rpc: expected </%s>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == name {
				return nil
			}
		case xml.StartElement:
			return fmt.Errorf("xml-rpc: unexpected <%s> before </%s>", t.Name.Local, name)
		}
	}
}
