package viwoods

// APIResponse is the common envelope of the tablet's JSON endpoints.
type APIResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// IsSuccess reports whether the tablet accepted the request.
// The service uses HTTP-style codes inside the envelope.
func (r *APIResponse) IsSuccess() bool {
	return r.Code == 200
}

// Entry is one child of a folder as returned by getChildFolderList.
type Entry struct {
	FileName   string `json:"fileName"`
	IsFolder   bool   `json:"isFolder"`
	NoteID     string `json:"noteId"`
	UpdateTime int64  `json:"updateTime"` // Unix milliseconds
	FileSize   int64  `json:"fileSize"`
	AppType    string `json:"appType"`
}

// ListResponse is the getChildFolderList payload.
type ListResponse struct {
	APIResponse
	Data []Entry `json:"data"`
}

// PackageResponse is the packageFile payload; Data is the path of the
// packaged file on the tablet, to be passed to the download endpoint.
type PackageResponse struct {
	APIResponse
	Data string `json:"data"`
}
