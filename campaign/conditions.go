package campaign

import (
	"github.com/mbolis/quick-campaign/model"
)

// validateCondition checks the condition of item ownerID. It may only
// refer to prior, already built siblings of the same container.
func (b *builder) validateCondition(ownerID, containerID, cond string, prior []model.SurveyItem) error {
	res, err := b.parser.Parse(cond)
	if err != nil {
		return model.Wrap(model.CodeConditionSyntax, err, "condition of %q in %q", ownerID, containerID)
	}

	for _, id := range res.IDs() {
		var ref model.SurveyItem
		for _, item := range prior {
			if item.ID() == id {
				ref = item
				break
			}
		}
		if ref == nil {
			if id == ownerID {
				return model.Errorf(model.CodeConditionReference, "condition of %q in %q refers to itself", ownerID, containerID)
			}
			return model.Errorf(model.CodeConditionReference, "condition of %q in %q refers to %q, which is not an earlier item of %q",
				ownerID, containerID, id, containerID)
		}
		for _, pair := range res.Pairs(id) {
			if err := ref.ValidateCondition(pair); err != nil {
				return model.Wrap(model.CodeConditionValue, err, "condition of %q in %q", ownerID, containerID)
			}
		}
	}
	return nil
}
