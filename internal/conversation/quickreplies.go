package conversation

import "loan-assistant/internal/models"

// stageQuickReplies offers tap-to-answer suggestions per stage. Stages
// absent from the table expect free text.
var stageQuickReplies = map[models.Stage][]string{
	models.StageKYCVerification: {"yes, verify now", "not now"},
	models.StageSalesPitch:      {"yes, interested", "tell me more", "no thanks"},
	models.StageNewCustomerPitch: {
		"yes, check my eligibility", "no thanks",
	},
	models.StageLoanTypeSelect: {
		"personal", "wedding", "travel", "medical", "education",
	},
	models.StageLoanRequirement: {
		"need 2 lakh", "need 3 lakh", "need 5 lakh", "different amount",
	},
	models.StageTermsConfirm:    {"yes, proceed", "change tenure", "change amount", "no"},
	models.StageKYCUpload:       {"done uploading", "will do later"},
	models.StageConditionalDocs: {"yes, go ahead", "not now"},
	models.StageSanction:        {"yes, generate it", "later"},
}

// quickReplies returns the suggestions for the stage the session is now in.
func quickReplies(stage models.Stage) []string {
	return stageQuickReplies[stage]
}
