package rules

// Default returns the built-in payment-gateway security-audit rule set. It is
// used when no rules file is supplied and doubles as a realistic fixture for
// tests. Callers must treat the returned set as read-only.
func Default() Set {
	return Set{
		{
			ID:      "check_01_database",
			Kind:    KindChecklist,
			Label:   "Maintain database to store the transaction details / status (YES)",
			Phrases: []string{"maintain", "database", "transaction", "status"},
			Marker:  "(YES)",
			Hint:    "Confirm the checklist explicitly documents database retention with a YES acknowledgement.",
		},
		{
			ID:      "check_02_payment_confirmation",
			Kind:    KindChecklist,
			Label:   "Services / payment confirmation to customer provided on basis of database status (YES)",
			Phrases: []string{"payment", "confirmation", "database", "status"},
			Marker:  "(YES)",
			Hint:    "Validate customer confirmation derives from database status and is marked YES.",
		},
		{
			ID:      "check_03_audit_transactions",
			Kind:    KindChecklist,
			Label:   "7-8 transactions performed in the Security Audit process (YES)",
			Phrases: []string{"7-8", "transactions", "security", "audit"},
			Marker:  "(YES)",
			Hint:    "The audit narrative must state that 7-8 transactions were exercised.",
		},
		{
			ID:      "check_04_login_credentials",
			Kind:    KindChecklist,
			Label:   "Login credentials available till audit completion (YES)",
			Phrases: []string{"login", "credentials", "audit", "completion"},
			Marker:  "(YES)",
			Hint:    "Credentials must remain valid for the full audit window.",
		},
		{
			ID:      "check_05_no_purge",
			Kind:    KindChecklist,
			Label:   "Database records not cleared till audit completion (YES)",
			Phrases: []string{"database records", "not cleared", "audit completion"},
			Marker:  "(YES)",
			Hint:    "Records must be retained until the audit closes.",
		},
		{
			ID:      "check_06_uat_parity",
			Kind:    KindChecklist,
			Label:   "Provided UAT setup identical to production setup (YES)",
			Phrases: []string{"uat", "identical", "production", "setup"},
			Marker:  "(YES)",
			Hint:    "UAT must mirror production for the audit to be representative.",
		},
		{
			ID:      "check_07_dual_inquiry",
			Kind:    KindChecklist,
			Label:   "Dual inquiry Status API implemented in response (YES)",
			Phrases: []string{"dual", "inquiry", "status", "api"},
			Marker:  "(YES)",
			Hint:    "Both inquiry paths must be documented in the response flow.",
		},
		{
			ID:      "check_08_audit_checklist",
			Kind:    KindChecklist,
			Label:   "Audit checklist implemented for integration & security audit (YES)",
			Phrases: []string{"audit", "checklist", "integration", "security"},
			Marker:  "(YES)",
			Hint:    "The checklist itself must be embedded in the evidence.",
		},

		{
			ID:       "brand_collectnow",
			Kind:     KindText,
			Label:    "Document references CollectNow branding",
			Phrases:  []string{"hdfc", "collect", "now"},
			Category: "branding",
			Hint:     "Ensure the document explicitly mentions HDFC CollectNow branding.",
		},
		{
			ID:         "brand_color_palette",
			Kind:       KindText,
			Label:      "Brand color palette mentioned (blue & red)",
			Phrases:    []string{"red"},
			AnyPhrases: []string{"blue", "navy"},
			Category:   "branding",
			Hint:       "Look for narrative confirming the red/blue brand palette.",
		},
		{
			ID:       "api_checkout_embedded",
			Kind:     KindText,
			Label:    "Checkout embed URL documented",
			Phrases:  []string{"api.razorpay.com/v1/checkout/embedded"},
			Category: "api",
			Hint:     "URL must appear exactly as api.razorpay.com/v1/checkout/embedded.",
		},
		{
			ID:         "api_status_endpoint",
			Kind:       KindText,
			Label:      "Status API endpoint referenced",
			Phrases:    []string{"api"},
			AnyPhrases: []string{"/v1/status", "status api"},
			Category:   "api",
		},
		{
			ID:      "request_payload",
			Kind:    KindText,
			Label:   "Request payload includes mandatory parameters",
			Phrases: []string{
				"merchant_id", "order_id", "amount", "currency",
				"payment_capture", "callback_url", "customer_id", "customer_email",
			},
			Category: "api-contract",
			Hint:     "Confirm sample requests include the mandatory gateway parameters.",
		},
		{
			ID:      "response_payload",
			Kind:    KindText,
			Label:   "Response payload includes mandatory parameters",
			Phrases: []string{
				"payment_id", "order_id", "status", "signature",
				"amount", "currency", "acquirer_data", "method",
			},
			Category: "api-contract",
			Hint:     "Confirm sample responses list identifiers, status, and signature for verification.",
		},

		{
			ID:         "visual_logo",
			Kind:       KindScreenshot,
			Label:      "CollectNow branding visible",
			AnyPhrases: []string{"hdfc smartcollect", "smart collect", "collectnow", "collect now"},
			Threshold:  70,
			Category:   "visual",
			Hint:       "Ensure the UI captures the CollectNow logo or wording in uploaded evidence.",
		},
		{
			ID:         "visual_checkout_url",
			Kind:       KindScreenshot,
			Label:      "Checkout embed URL displayed",
			Phrases:    []string{"api.razorpay.com"},
			AnyPhrases: []string{"/v1/checkout/embedded", "checkout embedded", "checkout/embedded"},
			Threshold:  60,
			Category:   "visual",
			Hint:       "Capture the browser bar that includes api.razorpay.com/v1/checkout/embedded.",
		},
		{
			ID:         "visual_payment_success",
			Kind:       KindScreenshot,
			Label:      "Payment success screen present",
			AnyPhrases: []string{
				"payment success", "payment successful", "transaction success",
				"payment completed", "success status", "successful payment",
			},
			Threshold: 70,
			Category:  "visual",
			Hint:      "Include confirmation screens that clearly proclaim a successful transaction.",
		},
		{
			ID:         "visual_payment_failure",
			Kind:       KindScreenshot,
			Label:      "Payment failure screen present",
			AnyPhrases: []string{
				"payment failure", "payment failed", "transaction failed",
				"failure status", "error processing payment",
			},
			Threshold: 70,
			Category:  "visual",
			Hint:      "Include failure experience evidence with explicit failure strings.",
		},
	}
}
