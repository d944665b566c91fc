package conversation

import (
	"fmt"
	"strconv"

	"loan-assistant/internal/models"
	"loan-assistant/internal/underwriting"
)

// formatINR renders an amount with Indian digit grouping, e.g. 2,50,000.
func formatINR(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		return s
	}
	head := s[:len(s)-3]
	out := "," + s[len(s)-3:]
	for len(head) > 2 {
		out = "," + head[len(head)-2:] + out
		head = head[:len(head)-2]
	}
	return head + out
}

func replyGreeting() string {
	return "Welcome to QuickLoan! I can get you a personal loan decision in minutes. May I know your name?"
}

func replyAskNameAgain(attempt int) string {
	if attempt == 0 {
		return "I didn't catch your name. Could you tell me your name, please?"
	}
	return "Sorry, I still didn't get it. Just type your name, for example: \"my name is Rahul\"."
}

func replyAskKYC(name string) string {
	return fmt.Sprintf("Good to see you, %s! Your KYC is pending with us. Shall I verify it now so we can proceed?", name)
}

func replyKYCDone(p *models.ApplicantProfile) string {
	return fmt.Sprintf(
		"Done! Your KYC is verified, %s. You have a pre-approved limit of Rs.%s. Would you like to take a loan today?",
		p.Name, formatINR(p.PreApprovedLimit),
	)
}

func replyKYCPersuade(name string) string {
	return fmt.Sprintf("It only takes a moment, %s, and unlocks your pre-approved offer. Verify now?", name)
}

func replyKYCMandatory(name string) string {
	return fmt.Sprintf(
		"I understand, %s, but KYC is mandatory before I can process any loan. Say \"yes\" whenever you're ready to verify.",
		name,
	)
}

func replySalesPitch(p *models.ApplicantProfile) string {
	return fmt.Sprintf(
		"Welcome back, %s! You have a pre-approved loan limit of Rs.%s at attractive rates. Would you like to avail it?",
		p.Name, formatINR(p.PreApprovedLimit),
	)
}

func replyPitchPersuade(p *models.ApplicantProfile) string {
	return fmt.Sprintf(
		"Rates this good don't come around often, %s. Rs.%s is ready for you with zero paperwork. Sure you want to pass?",
		p.Name, formatINR(p.PreApprovedLimit),
	)
}

func replyPoliteClose(name string) string {
	return fmt.Sprintf("Alright, %s, no pressure at all. I'm here whenever you need a loan. Have a great day!", name)
}

func replyNewCustomerPitch(name string) string {
	return fmt.Sprintf(
		"Nice to meet you, %s! We offer instant personal loans with minimal documentation. Shall I check what you qualify for?",
		name,
	)
}

func replyNewPitchPersuade() string {
	return "It takes under a minute and there's no commitment. Want me to check your eligibility?"
}

func replyAskSalary() string {
	return "Great! To find your best offer I need a few details. What is your monthly salary?"
}

func replyAskSalaryAgain(attempt int) string {
	if attempt == 0 {
		return "I couldn't read that as a monthly salary. Could you share it in rupees, like \"60000\" or \"60k\"?"
	}
	return "Please share a monthly salary between Rs.15,000 and Rs.5,00,000, for example \"45000\"."
}

func replyAskCity() string {
	return "Thanks! Which city do you live in?"
}

func replyAskCityAgain(attempt int) string {
	if attempt == 0 {
		return "Sorry, I didn't get the city. Which city are you based in?"
	}
	return "Just the city name is fine, like \"Mumbai\" or \"Pune\"."
}

func replyAskAge() string {
	return "Almost done. What is your age?"
}

func replyAskAgeAgain(attempt int) string {
	if attempt == 0 {
		return "I couldn't read that as an age. How old are you?"
	}
	return "Please share your age as a number between 18 and 65."
}

func replyProfileReadyAskAmount(p *models.ApplicantProfile) string {
	return fmt.Sprintf(
		"Good news, %s! Based on your details you're eligible for up to Rs.%s. How much would you like to borrow?",
		p.Name, formatINR(p.PreApprovedLimit),
	)
}

func replyProfileReadyAskPurpose(p *models.ApplicantProfile) string {
	return fmt.Sprintf(
		"Good news, %s! Based on your details you're eligible for up to Rs.%s. What is the loan for?",
		p.Name, formatINR(p.PreApprovedLimit),
	)
}

func replyAskPurpose() string {
	return "What would the loan be for? We cover personal, business, home renovation, wedding, travel, medical and education needs."
}

func replyAskPurposeAgain(attempt int) string {
	if attempt == 0 {
		return "I didn't catch the purpose. Is it for a wedding, travel, medical need, education, business, home renovation, or personal use?"
	}
	return "A single word works, like \"wedding\" or \"travel\"."
}

func replyAskAmount(p *models.ApplicantProfile) string {
	return fmt.Sprintf(
		"How much do you need? Your pre-approved limit is Rs.%s.",
		formatINR(p.PreApprovedLimit),
	)
}

func replyAskAmountAgain(attempt int) string {
	if attempt == 0 {
		return "I couldn't read that as an amount. How much would you like, for example \"2 lakh\" or \"250000\"?"
	}
	return "Please share the amount in rupees or lakhs, like \"need 3 lakh\"."
}

func replyAskAmountRevised() string {
	return "Sure, let's revise it. How much would you like to borrow?"
}

func replyTerms(p *models.ApplicantProfile, req *models.LoanRequest) string {
	rate := underwriting.RateFor(p.CreditScore)
	emi := underwriting.EMI(req.Amount, rate, req.TenureMonths)
	purpose := string(req.Purpose)
	if purpose == "" {
		purpose = string(models.PurposePersonal)
	}
	return fmt.Sprintf(
		"Here's your %s: Rs.%s over %d months at %.1f%% p.a., EMI approx Rs.%.2f. Shall I proceed with the application?",
		purpose, formatINR(req.Amount), req.TenureMonths, rate, emi,
	)
}

func replyTermsPersuade() string {
	return "You can still change the amount or tenure, just tell me. Or shall I proceed as quoted?"
}

func replyAskKYCUpload(name string) string {
	return fmt.Sprintf(
		"One last step, %s: please upload your PAN and address proof so I can complete KYC. Done uploading?",
		name,
	)
}

func replyDraftSaved(name string) string {
	return fmt.Sprintf(
		"No worries, %s. I've saved your application as a draft; finish the document upload anytime to continue.",
		name,
	)
}

func replyApproved(p *models.ApplicantProfile, d *models.Decision) string {
	return fmt.Sprintf(
		"Congratulations, %s! Your loan of Rs.%s is approved at %.1f%% for %d months. EMI: Rs.%.2f (confidence %d%%). Shall I generate your sanction letter?",
		p.Name, formatINR(d.ApprovedAmount), d.Rate, d.TenureMonths, d.EMI, d.Confidence,
	)
}

func replyReducedApproval(p *models.ApplicantProfile, d *models.Decision) string {
	return fmt.Sprintf(
		"%s, I couldn't approve the full Rs.%s, but Rs.%s is approved at %.1f%% for %d months, EMI Rs.%.2f (confidence %d%%). Shall I generate your sanction letter?",
		p.Name, formatINR(d.RequestedAmount), formatINR(d.ApprovedAmount), d.Rate, d.TenureMonths, d.EMI, d.Confidence,
	)
}

func replyConditionalOffer(p *models.ApplicantProfile, d *models.Decision) string {
	return fmt.Sprintf(
		"%s, I can approve Rs.%s at %.1f%% for %d months, EMI Rs.%.2f, once you share your latest salary slips and bank statement. Shall we go ahead?",
		p.Name, formatINR(d.ApprovedAmount), d.Rate, d.TenureMonths, d.EMI,
	)
}

func replyOfferLetter(p *models.ApplicantProfile, d *models.Decision) string {
	return fmt.Sprintf(
		"Excellent, %s! Rs.%s it is. Shall I generate your sanction letter now?",
		p.Name, formatINR(d.ApprovedAmount),
	)
}

func replyOfferParked(name string, d *models.Decision) string {
	return fmt.Sprintf(
		"Understood, %s. Your offer of Rs.%s stays valid for 30 days; come back anytime to accept it.",
		name, formatINR(d.ApprovedAmount),
	)
}

func replyRejected(p *models.ApplicantProfile, d *models.Decision) string {
	return fmt.Sprintf(
		"I'm sorry, %s, we couldn't approve Rs.%s at this time. Improving your credit profile will help; do check back with us later.",
		p.Name, formatINR(d.RequestedAmount),
	)
}

func replyLetterFailed() string {
	return "I hit a snag generating your sanction letter. Your approval is safe; say \"yes\" to try again."
}

func replyLetterReady(name, path string) string {
	return fmt.Sprintf(
		"All done, %s! Your sanction letter is ready: %s. Congratulations and welcome aboard!",
		name, path,
	)
}

func replyClosingNoLetter(name string) string {
	return fmt.Sprintf(
		"That's fine, %s. Your approval stands and the letter can be generated whenever you're ready. Thank you!",
		name,
	)
}

func replyCompleted() string {
	return "This conversation is complete. Send a reset to start a new application."
}
