package procedure

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("Panic in %s: %v", info.FullMethod, r)
				err = status.Error(codes.Internal, "internal error")
			}
			logCall(info.FullMethod, start, err)
		}()

		return handler(ctx, req)
	}
}

func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("Panic in %s: %v", info.FullMethod, r)
				err = status.Error(codes.Internal, "internal error")
			}
			logCall(info.FullMethod, start, err)
		}()

		return handler(srv, stream)
	}
}

func logCall(method string, start time.Time, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"method":  method,
		"code":    status.Code(err).String(),
		"latency": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("rpc")
		return
	}
	entry.Debug("rpc")
}
