package campaign

import (
	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/xmldoc"
)

// items builds the children of a content list in document order.
// containerID names the survey or repeatable set holding them, setID is
// the enclosing repeatable set, if any.
func (b *builder) items(list *xmldoc.Element, containerID, setID string) ([]model.SurveyItem, error) {
	if len(list.Children) == 0 {
		return nil, model.Errorf(model.CodeEmptyContent, "%q has no survey items", containerID)
	}

	items := make([]model.SurveyItem, 0, len(list.Children))
	seen := make(map[string]bool, len(list.Children))
	for index, el := range list.Children {
		id, err := el.OneText("id")
		if err != nil {
			return nil, fieldError(err, "item "+el.Name+" of "+containerID)
		}
		if !model.IsValidItemID(id) {
			return nil, model.Errorf(model.CodeInvalidID, "invalid item id %q in %q", id, containerID)
		}
		if seen[id] {
			return nil, model.Errorf(model.CodeDuplicateItem, "%q has two items with id %q", containerID, id)
		}

		cond, _, err := el.OptionalText("condition")
		if err != nil {
			return nil, fieldError(err, "item "+id)
		}
		if cond != "" {
			if err := b.validateCondition(id, containerID, cond, items); err != nil {
				return nil, err
			}
		}

		base := model.ItemParams{ID: id, Condition: cond, Index: index, ParentID: setID}
		var item model.SurveyItem
		switch el.Name {
		case "message":
			item, err = b.message(el, base)
		case "prompt":
			item, err = b.prompt(el, base)
		case "repeatableSet":
			if setID != "" && !b.allowNested {
				return nil, model.Errorf(model.CodeNestedRepeatable, "repeatable set %q is nested in repeatable set %q", id, setID)
			}
			item, err = b.repeatableSet(el, base)
		default:
			return nil, model.Errorf(model.CodeUnknownItemType, "unknown item <%s> in %q", el.Name, containerID)
		}
		if err != nil {
			return nil, err
		}

		seen[id] = true
		items = append(items, item)
	}
	return items, nil
}

func (b *builder) message(el *xmldoc.Element, base model.ItemParams) (*model.Message, error) {
	text, err := el.OneText("messageText")
	if err != nil {
		return nil, fieldError(err, "message "+base.ID)
	}
	return model.NewMessage(base, text)
}

func (b *builder) repeatableSet(el *xmldoc.Element, base model.ItemParams) (*model.RepeatableSet, error) {
	where := "repeatable set " + base.ID

	var t model.Termination
	var err error
	if t.Question, err = el.OneText("terminationQuestion"); err != nil {
		return nil, fieldError(err, where)
	}
	if t.TrueLabel, err = el.OneText("terminationTrueLabel"); err != nil {
		return nil, fieldError(err, where)
	}
	if t.FalseLabel, err = el.OneText("terminationFalseLabel"); err != nil {
		return nil, fieldError(err, where)
	}
	if t.SkipEnabled, err = boolField(el, "terminationSkipEnabled", where); err != nil {
		return nil, err
	}
	if t.SkipLabel, _, err = el.OptionalText("terminationSkipLabel"); err != nil {
		return nil, fieldError(err, where)
	}

	prompts, err := el.One("prompts")
	if err != nil {
		return nil, fieldError(err, where)
	}
	children, err := b.items(prompts, base.ID, base.ID)
	if err != nil {
		return nil, err
	}
	return model.NewRepeatableSet(base, t, children, b.allowNested)
}
