package response

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// OK is the success envelope the polling clients key on.
type OK struct {
	Success bool `json:"success"`
}

func Ok() OK {
	return OK{Success: true}
}
