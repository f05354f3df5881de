// streamsink - streaming event collector sink
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamsink

package sink

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestFallbackSubmitterBatchesInGroupsOfTen(t *testing.T) {
	sqsClient := &fakeSQSClient{}
	scheduler, stop := startTestScheduler(t, 2)
	defer stop()

	fallback := NewFallbackSubmitter(sqsClient, "https://sqs.example.com/queue", scheduler)

	events := make([]Event, 23)
	for i := range events {
		events[i] = Event{Payload: []byte("event"), Key: "k"}
	}
	fallback.PutToFallback(events)

	deadline := time.After(2 * time.Second)
	for len(sqsClient.callLog()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected 3 SendMessageBatch calls, got %d", len(sqsClient.callLog()))
		case <-time.After(5 * time.Millisecond):
		}
	}

	calls := sqsClient.callLog()
	if len(calls) != 3 {
		t.Fatalf("expected exactly 3 calls, got %d", len(calls))
	}
	sizes := []int{len(calls[0].Entries), len(calls[1].Entries), len(calls[2].Entries)}
	want := []int{10, 10, 3}
	for i, w := range want {
		if sizes[i] != w {
			t.Fatalf("group %d size = %d, want %d (all sizes: %v)", i, sizes[i], w, sizes)
		}
	}
}

func TestFallbackSubmitterEncodesPayloadAndAttribute(t *testing.T) {
	sqsClient := &fakeSQSClient{}
	scheduler, stop := startTestScheduler(t, 1)
	defer stop()

	fallback := NewFallbackSubmitter(sqsClient, "https://sqs.example.com/queue", scheduler)
	fallback.PutToFallback([]Event{{Payload: []byte("hello"), Key: "partition-1"}})

	deadline := time.After(1 * time.Second)
	for len(sqsClient.callLog()) == 0 {
		select {
		case <-deadline:
			t.Fatal("expected one SendMessageBatch call")
		case <-time.After(5 * time.Millisecond):
		}
	}

	entry := sqsClient.callLog()[0].Entries[0]
	body := *entry.MessageBody
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		t.Fatalf("MessageBody is not valid base64: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("decoded body = %q, want %q", decoded, "hello")
	}
	if *entry.MessageAttributes[kinesisKeyAttribute].StringValue != "partition-1" {
		t.Fatalf("kinesisKey attribute = %q, want %q",
			*entry.MessageAttributes[kinesisKeyAttribute].StringValue, "partition-1")
	}
	if entry.Id == nil || *entry.Id == "" {
		t.Fatal("expected a non-empty unique message id")
	}
}

func TestFallbackSubmitterEmptyBatchIsNoOp(t *testing.T) {
	sqsClient := &fakeSQSClient{}
	scheduler, stop := startTestScheduler(t, 1)
	defer stop()

	fallback := NewFallbackSubmitter(sqsClient, "https://sqs.example.com/queue", scheduler)
	fallback.PutToFallback(nil)

	time.Sleep(20 * time.Millisecond)
	if len(sqsClient.callLog()) != 0 {
		t.Fatalf("expected no SendMessageBatch call for an empty batch, got %d", len(sqsClient.callLog()))
	}
}
