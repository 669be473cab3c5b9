package fio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFileIOManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.data")
	fio, err := NewFileIOManager(path)
	assert.Nil(t, err)
	assert.NotNil(t, fio)
	defer fio.Close()
}

func TestFileIO_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.data")
	fio, err := NewFileIOManager(path)
	assert.Nil(t, err)
	defer fio.Close()

	n, err := fio.Write([]byte(""))
	assert.Equal(t, 0, n)
	assert.Nil(t, err)

	// 成功时返回的字节数等于输入长度
	n, err = fio.Write([]byte("casklog kv"))
	assert.Equal(t, 10, n)
	assert.Nil(t, err)

	n, err = fio.Write([]byte("1234567"))
	assert.Equal(t, 7, n)
	assert.Nil(t, err)

	size, err := fio.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(17), size)
}

func TestFileIO_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.data")
	fio, err := NewFileIOManager(path)
	assert.Nil(t, err)
	defer fio.Close()

	_, err = fio.Write([]byte("key-a"))
	assert.Nil(t, err)
	_, err = fio.Write([]byte("key-b"))
	assert.Nil(t, err)

	// 定位读不会受追加游标影响
	b1 := make([]byte, 5)
	n, err := fio.Read(b1, 0)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("key-a"), b1)

	b2 := make([]byte, 5)
	n, err = fio.Read(b2, 5)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("key-b"), b2)
}

// 定位读之后追加写仍然落在文件末尾，与读偏移无关
func TestFileIO_AppendAfterRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.data")
	fio, err := NewFileIOManager(path)
	assert.Nil(t, err)
	defer fio.Close()

	_, err = fio.Write([]byte("first"))
	assert.Nil(t, err)

	buf := make([]byte, 5)
	_, err = fio.Read(buf, 0)
	assert.Nil(t, err)

	_, err = fio.Write([]byte("second"))
	assert.Nil(t, err)

	all := make([]byte, 11)
	_, err = fio.Read(all, 0)
	assert.Nil(t, err)
	assert.Equal(t, []byte("firstsecond"), all)
}

func TestFileIO_Sync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.data")
	fio, err := NewFileIOManager(path)
	assert.Nil(t, err)
	defer fio.Close()

	testData := []byte("hello sync test")
	_, err = fio.Write(testData)
	assert.Nil(t, err)

	err = fio.Sync()
	assert.Nil(t, err)

	// 用标准库重新读取文件，验证数据已经持久化
	persisted, err := os.ReadFile(path)
	assert.Nil(t, err)
	assert.Equal(t, testData, persisted)
}

func TestFileIO_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.data")
	fio, err := NewFileIOManager(path)
	assert.Nil(t, err)

	err = fio.Close()
	assert.Nil(t, err)

	// 关闭后的操作返回 ErrFileClosed
	_, err = fio.Write([]byte("x"))
	assert.Equal(t, ErrFileClosed, err)
	_, err = fio.Read(make([]byte, 1), 0)
	assert.Equal(t, ErrFileClosed, err)
	assert.Equal(t, ErrFileClosed, fio.Sync())
}
