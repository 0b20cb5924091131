package session

import (
	"github.com/goliatone/go-listsync/pkg/store"
)

// decodeAttachments converts the mapped attachment field value into typed
// descriptors. Remote listings arrive as generic object arrays; anything
// already typed passes through, and unrecognized shapes yield an empty set
// rather than failing the load.
func decodeAttachments(raw any) []store.Attachment {
	switch v := raw.(type) {
	case []store.Attachment:
		return v
	case []any:
		out := make([]store.Attachment, 0, len(v))
		for _, elem := range v {
			if att, ok := elem.(store.Attachment); ok {
				out = append(out, att)
				continue
			}
			obj, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			att := attachmentFromObject(obj)
			if att.Name == "" && att.ID == "" {
				continue
			}
			out = append(out, att)
		}
		return out
	default:
		return nil
	}
}

// attachmentValues recognizes the attachment-set shapes the save path routes
// into a reconcile plan: a typed slice, or a generic slice holding only
// Attachment elements. Anything else is left alone.
func attachmentValues(raw any) ([]store.Attachment, bool) {
	switch v := raw.(type) {
	case []store.Attachment:
		return v, true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]store.Attachment, 0, len(v))
		for _, elem := range v {
			att, ok := elem.(store.Attachment)
			if !ok {
				return nil, false
			}
			out = append(out, att)
		}
		return out, true
	default:
		return nil, false
	}
}

func attachmentFromObject(obj map[string]any) store.Attachment {
	att := store.Attachment{
		ID:          stringAt(obj, "id", "Id"),
		Name:        stringAt(obj, "name", "Name", "FileName"),
		ContentType: stringAt(obj, "contentType", "ContentType"),
		URL:         stringAt(obj, "url", "Url", "ServerRelativeUrl"),
	}
	switch size := obj["size"].(type) {
	case float64:
		att.Size = int64(size)
	case int:
		att.Size = int64(size)
	case int64:
		att.Size = size
	}
	return att
}

func stringAt(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
