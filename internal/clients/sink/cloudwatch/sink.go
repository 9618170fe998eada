package cloudwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/w-h-a/shiplog/internal/clients/sink"
	"github.com/w-h-a/shiplog/internal/logs"
)

type cloudWatchSink struct {
	options sink.Options
	client  *cloudwatchlogs.Client
}

func (s *cloudWatchSink) Ensure(ctx context.Context, opts ...sink.EnsureOption) error {
	_ = sink.NewEnsureOptions(opts...)

	slog.InfoContext(ctx, "creating log group", "group", s.options.Group)

	if _, err := s.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(s.options.Group),
	}); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("%w: %v", sink.ErrEnsureFailed, err)
		}

		slog.InfoContext(ctx, "log group already exists, reusing", "group", s.options.Group)
	}

	slog.InfoContext(ctx, "creating log stream", "group", s.options.Group, "stream", s.options.Stream)

	if _, err := s.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.options.Group),
		LogStreamName: aws.String(s.options.Stream),
	}); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("%w: %v", sink.ErrEnsureFailed, err)
		}

		slog.InfoContext(ctx, "log stream already exists, reusing", "group", s.options.Group, "stream", s.options.Stream)
	}

	return nil
}

func (s *cloudWatchSink) Append(ctx context.Context, events []logs.Event, opts ...sink.AppendOption) error {
	_ = sink.NewAppendOptions(opts...)

	if len(events) == 0 {
		return nil
	}

	input := &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(s.options.Group),
		LogStreamName: aws.String(s.options.Stream),
		LogEvents:     toInputLogEvents(events),
	}

	operation := func() (*cloudwatchlogs.PutLogEventsOutput, error) {
		rsp, err := s.client.PutLogEvents(ctx, input)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return rsp, err
	}

	if _, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(s.options.MaxRetries)),
	); err != nil {
		slog.ErrorContext(ctx, "failed to put log events", "group", s.options.Group, "stream", s.options.Stream, "error", err)
		return fmt.Errorf("%w: %v", sink.ErrDeliveryFailed, err)
	}

	return nil
}

func (s *cloudWatchSink) CheckHealth(ctx context.Context) error {
	_, err := s.client.DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
		Limit: aws.Int32(1),
	})

	return err
}

func (s *cloudWatchSink) Close(ctx context.Context) error {
	return nil
}

func toInputLogEvents(events []logs.Event) []types.InputLogEvent {
	in := make([]types.InputLogEvent, 0, len(events))

	for _, e := range events {
		in = append(in, types.InputLogEvent{
			Timestamp: aws.Int64(e.Timestamp.UnixMilli()),
			Message:   aws.String(e.Message),
		})
	}

	return in
}

func isAlreadyExists(err error) bool {
	var alreadyExists *types.ResourceAlreadyExistsException
	return errors.As(err, &alreadyExists)
}

// isRetryable treats rejections of the request itself as permanent; only
// transport-level and service-side failures are worth another attempt.
func isRetryable(err error) bool {
	var invalid *types.InvalidParameterException
	if errors.As(err, &invalid) {
		return false
	}

	var badToken *types.InvalidSequenceTokenException
	if errors.As(err, &badToken) {
		return false
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return false
	}

	var unaccepted *types.DataAlreadyAcceptedException
	if errors.As(err, &unaccepted) {
		return false
	}

	return true
}

func NewSink(opts ...sink.Option) sink.Sink {
	options := sink.NewOptions(opts...)

	c := cloudwatchlogs.New(cloudwatchlogs.Options{
		Region:      options.Region,
		Credentials: credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
	})

	cw := &cloudWatchSink{
		options: options,
		client:  c,
	}

	return cw
}
