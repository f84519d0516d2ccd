package util

func GetAppName() string {
	return "SevaSign"
}
