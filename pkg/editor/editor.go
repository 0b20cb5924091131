package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-listsync/pkg/fieldmeta"
	"github.com/goliatone/go-listsync/pkg/session"
)

// Option configures an Editor.
type Option func(*Editor)

// WithDriver replaces the default terminal driver.
func WithDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// Editor walks a set of fields and prompts for each, writing the answers
// into a session. Field names must match the form-side names the session
// carries.
type Editor struct {
	driver PromptDriver
}

// New returns an editor backed by an interactive terminal unless a driver
// overrides it.
func New(opts ...Option) *Editor {
	e := &Editor{driver: surveyDriver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit prompts for every editable field in order. Read-only, attachment and
// calculated fields are skipped. Leaving a prompt blank keeps the current
// value.
func (e *Editor) Edit(ctx context.Context, sess *session.Session, fields []fieldmeta.FieldMetadata) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if sess == nil {
		return fmt.Errorf("editor: nil session")
	}
	for _, meta := range fields {
		if !editable(meta) {
			continue
		}
		if err := e.editField(ctx, sess, meta); err != nil {
			return err
		}
	}
	return nil
}

func editable(meta fieldmeta.FieldMetadata) bool {
	if meta.ReadOnly {
		return false
	}
	switch meta.Type {
	case fieldmeta.TypeAttachment, fieldmeta.TypeCalculated:
		return false
	}
	return true
}

func (e *Editor) editField(ctx context.Context, sess *session.Session, meta fieldmeta.FieldMetadata) error {
	label := meta.DisplayName
	if label == "" {
		label = meta.InternalName
	}
	current, _ := sess.Value(meta.InternalName)

	switch meta.Type {
	case fieldmeta.TypeBoolean:
		answer, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: current == true,
			Help:    meta.Description,
		})
		if err != nil {
			return err
		}
		sess.SetValue(meta.InternalName, answer)
		return nil

	case fieldmeta.TypeChoice:
		if len(meta.Choices) == 0 {
			return e.editText(ctx, sess, meta, label, current)
		}
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      meta.Choices,
			DefaultIndex: indexOf(meta.Choices, stringValue(current)),
			Help:         meta.Description,
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(meta.Choices) {
			sess.SetValue(meta.InternalName, meta.Choices[idx])
		}
		return nil

	case fieldmeta.TypeMultiChoice:
		if len(meta.Choices) == 0 {
			return e.editText(ctx, sess, meta, label, current)
		}
		indices, err := e.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  meta.Choices,
			Defaults: indicesOf(meta.Choices, stringSlice(current)),
			Help:     meta.Description,
		})
		if err != nil {
			return err
		}
		selected := make([]any, 0, len(indices))
		for _, idx := range indices {
			selected = append(selected, meta.Choices[idx])
		}
		sess.SetValue(meta.InternalName, selected)
		return nil

	case fieldmeta.TypeNote:
		answer, err := e.driver.TextArea(ctx, InputConfig{
			Message: label,
			Default: stringValue(current),
			Help:    meta.Description,
		})
		if err != nil {
			return err
		}
		sess.SetValue(meta.InternalName, answer)
		return nil

	case fieldmeta.TypeNumber, fieldmeta.TypeCurrency:
		return e.editNumber(ctx, sess, meta, label, current)

	case fieldmeta.TypeLookup, fieldmeta.TypeUser:
		answer, err := e.driver.Input(ctx, InputConfig{
			Message: label + " (id)",
			Default: refID(current),
			Help:    meta.Description,
		})
		if err != nil {
			return err
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			sess.SetValue(meta.InternalName, map[string]any{"Id": answer})
		}
		return nil

	case fieldmeta.TypeLookupMulti, fieldmeta.TypeUserMulti:
		answer, err := e.driver.Input(ctx, InputConfig{
			Message: label + " (ids, comma separated)",
			Default: refIDs(current),
			Help:    meta.Description,
		})
		if err != nil {
			return err
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			var refs []any
			for _, id := range strings.Split(answer, ",") {
				if id = strings.TrimSpace(id); id != "" {
					refs = append(refs, map[string]any{"Id": id})
				}
			}
			sess.SetValue(meta.InternalName, refs)
		}
		return nil

	default:
		return e.editText(ctx, sess, meta, label, current)
	}
}

func (e *Editor) editText(ctx context.Context, sess *session.Session, meta fieldmeta.FieldMetadata, label string, current any) error {
	answer, err := e.driver.Input(ctx, InputConfig{
		Message: label,
		Default: stringValue(current),
		Help:    meta.Description,
	})
	if err != nil {
		return err
	}
	if answer == "" && current != nil {
		return nil
	}
	sess.SetValue(meta.InternalName, answer)
	return nil
}

func (e *Editor) editNumber(ctx context.Context, sess *session.Session, meta fieldmeta.FieldMetadata, label string, current any) error {
	for {
		answer, err := e.driver.Input(ctx, InputConfig{
			Message: label,
			Default: stringValue(current),
			Help:    meta.Description,
		})
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			if err := e.driver.Info(ctx, fmt.Sprintf("%s must be a number", label)); err != nil {
				return err
			}
			continue
		}
		sess.SetValue(meta.InternalName, parsed)
		return nil
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func refID(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	return stringValue(obj["Id"])
}

func refIDs(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	var ids []string
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			if id := stringValue(obj["Id"]); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return strings.Join(ids, ", ")
}
