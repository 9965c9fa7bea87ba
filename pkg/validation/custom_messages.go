package validation

func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"max": "Email must be at most 255 characters",
		},
		"Name": {
			"max": "Name must be at most 120 characters",
		},
		"ShortToken": {
			"required": "Short token is required",
			"max":      "Short token must be at most 64 characters",
		},
	}
	return customValidationMessages[field]
}
