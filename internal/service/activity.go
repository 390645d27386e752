package service

// ActivityRecorder 记录业务事件，供管理端实时统计
type ActivityRecorder interface {
	Record(action, resource, resourceID, userID string)
}

type noopRecorder struct{}

func (noopRecorder) Record(string, string, string, string) {}

func recorderOrNoop(r ActivityRecorder) ActivityRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
