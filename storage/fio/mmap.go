package fio

import (
	"fmt"

	"golang.org/x/exp/mmap"
)

// MMapIO 内存映射 IO 实现
// 构造时把整个文件只读映射进内存，得到一个快照：
// 映射之后文件再增长，本实例也观察不到，所以只能用于已经封存、
// 不再被追加的数据文件
// 写入和同步是明确声明的能力缺口，调用会返回 ErrUnsupported 而不是崩溃
type MMapIO struct {
	readerAt *mmap.ReaderAt
}

// NewMMapIOManager 对文件建立只读内存映射
// 参数：
//   - fileName: 文件路径
//
// 返回：
//   - *MMapIO: 内存映射 IO 实例
//   - error: 映射错误
func NewMMapIOManager(fileName string) (*MMapIO, error) {
	readerAt, err := mmap.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("内存映射文件失败: %w", err)
	}
	return &MMapIO{readerAt: readerAt}, nil
}

// Read 从映射区间内做边界检查后的拷贝
// 读取范围超出映射区间时返回 ErrOutOfBounds，不会扩展视图
func (mio *MMapIO) Read(buf []byte, offset int64) (int, error) {
	if mio.readerAt == nil {
		return 0, ErrFileClosed
	}
	if offset < 0 || offset+int64(len(buf)) > int64(mio.readerAt.Len()) {
		return 0, ErrOutOfBounds
	}
	return mio.readerAt.ReadAt(buf, offset)
}

// Write 只读快照不支持写入
func (mio *MMapIO) Write([]byte) (int, error) {
	return 0, ErrUnsupported
}

// Size 返回映射区间的长度
func (mio *MMapIO) Size() (int64, error) {
	if mio.readerAt == nil {
		return 0, ErrFileClosed
	}
	return int64(mio.readerAt.Len()), nil
}

// Sync 只读快照不支持同步
func (mio *MMapIO) Sync() error {
	return ErrUnsupported
}

// Close 解除映射
func (mio *MMapIO) Close() error {
	if mio.readerAt == nil {
		return nil
	}
	err := mio.readerAt.Close()
	mio.readerAt = nil
	return err
}

// 确保 MMapIO 实现了 IOManager 接口
var _ IOManager = (*MMapIO)(nil)
