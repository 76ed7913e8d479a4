package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                   = 0
	CodeBadRequest           = 40000
	CodeUnauthorized         = 40100
	CodeConversationNotFound = 40401
	CodeInternalServer       = 50000
)

// APIResponse is the envelope for the supporting read endpoints.
type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ChatResponse is the pipeline contract consumed by the platform UI. Both
// real and fallback answers are 200 with Success true; hard failures are 500
// with Success false and Error set.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProcessFileResponse is the file-processing contract.
type ProcessFileResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	ContentLength  int    `json:"contentLength,omitempty"`
	ContentPreview string `json:"contentPreview,omitempty"`
	Error          string `json:"error,omitempty"`
}
