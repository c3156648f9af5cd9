package config

type WorkerKeyStruct struct {
	ReportNotificationQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ReportNotificationQueue: "report_notification_queue",
}
