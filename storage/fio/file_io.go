package fio

import (
	"fmt"
	"os"
)

// FileIO 标准文件 IO 实现
// 以读写追加模式打开文件：写入总是发生在文件末尾（由操作系统保证），
// 读取走 ReadAt 定位读，不会移动追加游标，所以同一个实例上的
// 追加写和定位读可以并发进行
type FileIO struct {
	fd *os.File
}

// NewFileIOManager 打开或创建文件，初始化标准文件 IO
// 参数：
//   - fileName: 文件路径
//
// 返回：
//   - *FileIO: 文件 IO 实例
//   - error: 打开错误
func NewFileIOManager(fileName string) (*FileIO, error) {
	fd, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR|os.O_APPEND, DataFilePerm)
	if err != nil {
		return nil, fmt.Errorf("打开数据文件失败: %w", err)
	}
	return &FileIO{fd: fd}, nil
}

// Read 从指定偏移量定位读
func (fio *FileIO) Read(buf []byte, offset int64) (int, error) {
	if fio.fd == nil {
		return 0, ErrFileClosed
	}
	return fio.fd.ReadAt(buf, offset)
}

// Write 在文件末尾追加写入
// O_APPEND 语义下写入位置由操作系统决定，与调用方维护的游标无关
func (fio *FileIO) Write(buf []byte) (int, error) {
	if fio.fd == nil {
		return 0, ErrFileClosed
	}
	return fio.fd.Write(buf)
}

// Size 返回文件当前大小
func (fio *FileIO) Size() (int64, error) {
	if fio.fd == nil {
		return 0, ErrFileClosed
	}
	stat, err := fio.fd.Stat()
	if err != nil {
		return 0, fmt.Errorf("获取文件状态失败: %w", err)
	}
	return stat.Size(), nil
}

// Sync 将数据和元数据同步到磁盘
func (fio *FileIO) Sync() error {
	if fio.fd == nil {
		return ErrFileClosed
	}
	if err := fio.fd.Sync(); err != nil {
		return fmt.Errorf("同步数据到磁盘失败: %w", err)
	}
	return nil
}

// Close 关闭文件
func (fio *FileIO) Close() error {
	if fio.fd == nil {
		return nil
	}
	err := fio.fd.Close()
	fio.fd = nil
	return err
}

// 确保 FileIO 实现了 IOManager 接口
var _ IOManager = (*FileIO)(nil)
