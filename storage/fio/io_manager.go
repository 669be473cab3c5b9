package fio

import "errors"

// ErrOutOfBounds 表示读取范围超出了存储介质的可寻址区间
var ErrOutOfBounds = errors.New("read out of bounds")

// ErrUnsupported 表示当前 IO 实现不支持该操作（只读快照上的写入/同步）
var ErrUnsupported = errors.New("operation not supported by this io manager")

// ErrFileClosed 表示文件已关闭
var ErrFileClosed = errors.New("file is closed")

// DataFilePerm 数据文件的默认权限
const DataFilePerm = 0644

// IOType 定义 IO 管理器的类型
// 类型在构造时一次性确定，之后不再做运行时判断
type IOType byte

const (
	// StandardFIO 标准文件 IO：追加写 + 定位读
	StandardFIO IOType = iota

	// MemoryMap 内存映射 IO：构造时对整个文件建立只读快照，仅用于已封存的文件
	MemoryMap
)

// IOManager 是底层存储介质的抽象接口
// 所有调用都是同步阻塞的，错误原样上抛，内部不做重试
type IOManager interface {
	// Read 从指定偏移量读取数据填充 buf
	// 参数：
	//   - buf: 目标缓冲区
	//   - offset: 介质内的绝对偏移量
	// 返回：
	//   - int: 实际读取的字节数
	//   - error: 读取错误，超出介质范围返回 ErrOutOfBounds
	Read(buf []byte, offset int64) (int, error)

	// Write 在介质当前末尾追加写入数据
	// 成功时返回的字节数一定等于 len(buf)，否则返回错误
	Write(buf []byte) (int, error)

	// Size 返回介质当前的总长度
	Size() (int64, error)

	// Sync 将缓冲的写入强制落盘，阻塞直到完成
	Sync() error

	// Close 关闭并释放底层资源
	Close() error
}

// NewIOManager 根据类型初始化对应的 IO 管理器
// 参数：
//   - fileName: 文件路径
//   - ioType: IO 类型
//
// 返回：
//   - IOManager: IO 管理器实例
//   - error: 初始化错误
func NewIOManager(fileName string, ioType IOType) (IOManager, error) {
	switch ioType {
	case StandardFIO:
		return NewFileIOManager(fileName)
	case MemoryMap:
		return NewMMapIOManager(fileName)
	default:
		panic("unsupported io type")
	}
}
