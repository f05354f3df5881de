// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	kinesistypes "github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// fakeKinesisClient is a scriptable KinesisAPI for tests. putRecordsFn is
// invoked for every call; if nil, PutRecords returns a response with no
// per-record errors.
type fakeKinesisClient struct {
	mu            sync.Mutex
	putRecordsFn  func(call int, in *kinesis.PutRecordsInput) (*kinesis.PutRecordsOutput, error)
	describeFn    func(in *kinesis.DescribeStreamInput) (*kinesis.DescribeStreamOutput, error)
	putRecordsLog []*kinesis.PutRecordsInput
	calls         int
}

func (f *fakeKinesisClient) PutRecords(_ context.Context, in *kinesis.PutRecordsInput, _ ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.putRecordsLog = append(f.putRecordsLog, in)
	fn := f.putRecordsFn
	f.mu.Unlock()

	if fn != nil {
		return fn(call, in)
	}
	out := &kinesis.PutRecordsOutput{Records: make([]kinesistypes.PutRecordsResultEntry, len(in.Records))}
	return out, nil
}

func (f *fakeKinesisClient) DescribeStream(_ context.Context, in *kinesis.DescribeStreamInput, _ ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error) {
	if f.describeFn != nil {
		return f.describeFn(in)
	}
	status := kinesistypes.StreamStatusActive
	return &kinesis.DescribeStreamOutput{
		StreamDescription: &kinesistypes.StreamDescription{StreamStatus: status},
	}, nil
}

func (f *fakeKinesisClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSQSClient is a scriptable SQSAPI for tests.
type fakeSQSClient struct {
	mu               sync.Mutex
	sendBatchFn      func(call int, in *sqs.SendMessageBatchInput) (*sqs.SendMessageBatchOutput, error)
	getQueueURLFn    func(in *sqs.GetQueueUrlInput) (*sqs.GetQueueUrlOutput, error)
	sendBatchLog     []*sqs.SendMessageBatchInput
	calls            int
}

func (f *fakeSQSClient) SendMessageBatch(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.sendBatchLog = append(f.sendBatchLog, in)
	fn := f.sendBatchFn
	f.mu.Unlock()

	if fn != nil {
		return fn(call, in)
	}
	return &sqs.SendMessageBatchOutput{}, nil
}

func (f *fakeSQSClient) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	if f.getQueueURLFn != nil {
		return f.getQueueURLFn(in)
	}
	url := "https://sqs.example.com/123456789012/" + *in.QueueName
	return &sqs.GetQueueUrlOutput{QueueUrl: &url}, nil
}

func (f *fakeSQSClient) callLog() []*sqs.SendMessageBatchInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*sqs.SendMessageBatchInput, len(f.sendBatchLog))
	copy(out, f.sendBatchLog)
	return out
}
