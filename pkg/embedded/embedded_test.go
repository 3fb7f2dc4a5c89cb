package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/runner.yaml": &fstest.MapFile{Data: []byte("lanes:\n  count: 3\n")},
	}
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	initialized = false

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())
	defer func() { initialized = false }()

	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
}

// TestNotInitialized 测试未初始化时访问资源
func TestNotInitialized(t *testing.T) {
	initialized = false

	if _, err := Open("data/runner.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Open: expected ErrNotInitialized, got %v", err)
	}
	if _, err := ReadFile("data/runner.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ReadFile: expected ErrNotInitialized, got %v", err)
	}
	if Exists("data/runner.yaml") {
		t.Error("Exists: expected false before Init()")
	}
}

// TestReadFile 测试读取嵌入文件
func TestReadFile(t *testing.T) {
	Init(testFS())
	defer func() { initialized = false }()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"标准路径", "data/runner.yaml", false},
		{"带 ./ 前缀", "./data/runner.yaml", false},
		{"文件不存在", "data/missing.yaml", true},
		{"无效前缀", "assets/runner.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadFile(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(data) != "lanes:\n  count: 3\n" {
				t.Errorf("Unexpected content: %q", data)
			}
		})
	}
}

// TestExists 测试文件存在性检查
func TestExists(t *testing.T) {
	Init(testFS())
	defer func() { initialized = false }()

	if !Exists("data/runner.yaml") {
		t.Error("Expected data/runner.yaml to exist")
	}
	if Exists("data/nonexistent.yaml") {
		t.Error("Expected Exists() to return false for non-existent file")
	}
}
