package model

// ImageRequest 客户端上传的 base64 图片
type ImageRequest struct {
	ImageData string `json:"imagedata"`
}

// LocationRequest 求助者位置
type LocationRequest struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Address   string `json:"address"`
}

// AlertResponse 求助短信发送结果
type AlertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SID     string `json:"sid,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
