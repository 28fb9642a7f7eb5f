package pages

import (
	"strings"

	"workspace-service/internal/apperr"
	"workspace-service/internal/model"
)

// UntitledPlaceholder replaces an empty page title.
const UntitledPlaceholder = "Untitled"

// BlockInput is one entry of a full replacement block list. A nil ID
// means the block is new.
type BlockInput struct {
	ID      *uint          `json:"id"`
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
}

// blockData is a validated, normalized block entry.
type blockData struct {
	id      *uint
	typ     string
	content map[string]any
}

// NormalizeTitle trims the title; an empty result becomes the placeholder.
func NormalizeTitle(title string) string {
	cleaned := strings.TrimSpace(title)
	if cleaned == "" {
		return UntitledPlaceholder
	}
	return cleaned
}

// validateBlocks checks every entry's type and content shape before any
// mutation happens. One bad entry fails the whole list.
func validateBlocks(inputs []BlockInput) ([]blockData, error) {
	normalized := make([]blockData, 0, len(inputs))
	for _, in := range inputs {
		if !model.ValidBlockType(in.Type) {
			return nil, apperr.Validationf("unsupported block type: %q", in.Type)
		}
		content, err := normalizeContent(in.Type, in.Content)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, blockData{id: in.ID, typ: in.Type, content: content})
	}
	return normalized, nil
}

func normalizeContent(blockType string, content map[string]any) (map[string]any, error) {
	if content == nil {
		content = map[string]any{}
	}
	switch blockType {
	case model.BlockText, model.BlockHeading:
		text, err := stringField(content, "text", "")
		if err != nil {
			return nil, err
		}
		return map[string]any{"text": text}, nil

	case model.BlockBulletedList:
		raw, ok := content["items"].([]any)
		if content["items"] != nil && !ok {
			return nil, apperr.Validationf("bulleted_list items must be a list")
		}
		items := make([]any, 0, len(raw))
		for _, entry := range raw {
			text, ok := entry.(string)
			if !ok {
				return nil, apperr.Validationf("bulleted_list items must be strings")
			}
			items = append(items, text)
		}
		return map[string]any{"items": items}, nil

	case model.BlockCheckboxList:
		raw, ok := content["items"].([]any)
		if content["items"] != nil && !ok {
			return nil, apperr.Validationf("checkbox_list items must be a list")
		}
		items := make([]any, 0, len(raw))
		for _, entry := range raw {
			item, ok := entry.(map[string]any)
			if !ok {
				return nil, apperr.Validationf("checkbox_list items must be objects")
			}
			text, err := stringField(item, "text", "")
			if err != nil {
				return nil, apperr.Validationf("checkbox_list item text must be a string")
			}
			checked := false
			if rawChecked, present := item["checked"]; present {
				checked, ok = rawChecked.(bool)
				if !ok {
					return nil, apperr.Validationf("checkbox_list item checked must be a boolean")
				}
			}
			items = append(items, map[string]any{"text": text, "checked": checked})
		}
		return map[string]any{"items": items}, nil

	case model.BlockDivider:
		return map[string]any{}, nil

	case model.BlockCallout:
		style, err := stringField(content, "style", "note")
		if err != nil {
			return nil, err
		}
		if !model.ValidCalloutStyle(style) {
			return nil, apperr.Validationf("unsupported callout style: %q", style)
		}
		text, err := stringField(content, "text", "")
		if err != nil {
			return nil, err
		}
		return map[string]any{"style": style, "text": text}, nil
	}
	return nil, apperr.Validationf("unsupported block type: %q", blockType)
}

func stringField(content map[string]any, field, fallback string) (string, error) {
	raw, present := content[field]
	if !present {
		return fallback, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", apperr.Validationf("block %s must be a string", field)
	}
	return value, nil
}
