package mirror

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// fakeUploader 内存上传器
type fakeUploader struct {
	mu     sync.Mutex
	pinned []interface{}
	err    error
}

func (f *fakeUploader) PinJSON(ctx context.Context, data interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.pinned = append(f.pinned, data)
	return "QmFake", nil
}

func (f *fakeUploader) PinFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "QmFakeFile", nil
}

func (f *fakeUploader) GatewayURL(hash string) string {
	return "https://gateway.test/ipfs/" + hash
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pinned)
}

func TestPinSnapshot(t *testing.T) {
	uploader := &fakeUploader{}
	svc, err := NewService(uploader, nil, 2)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	cid, err := svc.PinSnapshot(context.Background(), 1, KindStatusUpdate, StatusSnapshot{
		IssueId: 1,
		Status:  "Resolved",
		Type:    KindStatusUpdate,
	})
	if err != nil {
		t.Fatalf("PinSnapshot: %v", err)
	}
	if cid != "QmFake" {
		t.Errorf("cid = %q, want QmFake", cid)
	}
	if uploader.count() != 1 {
		t.Errorf("pinned %d payloads, want 1", uploader.count())
	}
}

func TestPinSnapshotUploadError(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("pinata down")}
	svc, err := NewService(uploader, nil, 2)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	if _, err := svc.PinSnapshot(context.Background(), 1, KindStatusUpdate, StatusSnapshot{}); err == nil {
		t.Fatal("expected error when uploader fails")
	}
}

// 异步提交失败只记录日志，不影响调用方
func TestSubmitSnapshotFailureIsSilent(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("pinata down")}
	svc, err := NewService(uploader, nil, 2)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	svc.SubmitSnapshot(1, KindFundingUpdate, FundingSnapshot{IssueId: 1})
	// 等待池内任务执行完
	time.Sleep(100 * time.Millisecond)

	if uploader.count() != 0 {
		t.Errorf("pinned %d payloads, want 0", uploader.count())
	}
}

func TestSubmitSnapshot(t *testing.T) {
	uploader := &fakeUploader{}
	svc, err := NewService(uploader, nil, 2)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	svc.SubmitSnapshot(7, KindIssueMetadata, IssueMetadata{Location: "Main St"})

	deadline := time.Now().Add(2 * time.Second)
	for uploader.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if uploader.count() != 1 {
		t.Fatalf("pinned %d payloads, want 1", uploader.count())
	}
}
