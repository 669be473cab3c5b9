package storage

import "errors"

// ErrKeyNotFound 表示键不存在的错误
var ErrKeyNotFound = errors.New("key not found")

// Position 表示一条记录的编码字节在磁盘上的位置
// (FileID, Offset) 唯一定位一条记录，Size 是记录编码后的总长度（头部 + key + value）
// Position 在一次成功写入后产生，之后不可变；同一个 key 的新写入会产生新的
// Position 替换索引里的旧值，而不是原地修改
type Position struct {
	FileID uint32 // 数据文件 ID
	Offset uint32 // 记录在文件内的起始偏移量
	Size   uint32 // 记录编码后的总字节数
}

// Engine 是存储引擎的抽象接口
// 实现了键值存储的基本操作：Put、Get、Delete、Sync、Close
type Engine interface {
	// Put 写入键值对
	// 参数：
	//   - key: 键
	//   - value: 值
	// 返回：
	//   - error: 写入错误
	Put(key []byte, value []byte) error

	// Get 根据键获取值
	// 参数：
	//   - key: 键
	// 返回：
	//   - []byte: 值
	//   - error: 读取错误，如果键不存在返回 ErrKeyNotFound
	Get(key []byte) ([]byte, error)

	// Delete 删除键值对
	// 参数：
	//   - key: 键
	// 返回：
	//   - error: 删除错误
	Delete(key []byte) error

	// Sync 将已写入的数据强制落盘
	// 返回：
	//   - error: 同步错误
	Sync() error

	// Close 关闭存储引擎，释放资源
	// 返回：
	//   - error: 关闭错误
	Close() error
}
