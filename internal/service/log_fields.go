package service

import "go.uber.org/zap"

func logReason(reason string) zap.Field {
	return zap.String("reason", reason)
}

func logUserID(id uint) zap.Field {
	return zap.Uint("user_id", id)
}
