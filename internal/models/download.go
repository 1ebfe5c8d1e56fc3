package models

type DownloadResult struct {
	Container        string `json:"container"`
	RemotePath       string `json:"remote_path"`
	LocalPath        string `json:"local_path"`
	Size             int64  `json:"size"`
	SizeHuman        string `json:"size_human"`
	ContentType      string `json:"content_type"`
	OperationTime    string `json:"operation_time"`
	DownloadDuration string `json:"download_duration"`
}
