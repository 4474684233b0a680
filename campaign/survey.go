package campaign

import (
	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/xmldoc"
)

func (b *builder) survey(el *xmldoc.Element) (*model.Survey, error) {
	id, err := el.OneText("id")
	if err != nil {
		return nil, fieldError(err, "survey")
	}
	if !model.IsValidItemID(id) {
		return nil, model.Errorf(model.CodeInvalidID, "invalid survey id: %q", id)
	}
	where := "survey " + id

	var p model.SurveyParams
	p.ID = id
	if p.Title, err = el.OneText("title"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.Description, _, err = el.OptionalText("description"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.IntroText, _, err = el.OptionalText("introText"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.SubmitText, err = el.OneText("submitText"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.ShowSummary, err = boolField(el, "showSummary", where); err != nil {
		return nil, err
	}
	if p.EditSummary, err = optionalBoolField(el, "editSummary", where); err != nil {
		return nil, err
	}
	if p.SummaryText, _, err = el.OptionalText("summaryText"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.Anytime, err = boolField(el, "anytime", where); err != nil {
		return nil, err
	}

	content, err := el.One("contentList")
	if err != nil {
		return nil, fieldError(err, where)
	}
	if p.Items, err = b.items(content, id, ""); err != nil {
		return nil, err
	}

	return model.NewSurvey(p)
}
