package index

import "github.com/wanglei1037/casklog/storage"

// Index 是内存索引的抽象接口
// 负责维护 key 到磁盘位置（Position）的映射
// 四个操作对合法的 key 都是全量定义的：不存在只通过 nil 返回值表达，
// 从不以错误的形式报告
// 注意接口不保证跨多次调用的复合原子性：一个线程 Get 之后紧跟另一个
// 线程的 Delete 不会被当作一个单元保护，需要复合原子性的调用方要在
// 外部自行协调
type Index interface {
	// Put 写入 key 对应的位置信息，已存在则覆盖
	// 返回：
	//   - *storage.Position: 之前存储的位置，key 是新键则返回 nil
	Put(key []byte, pos *storage.Position) *storage.Position

	// Get 根据 key 取出位置信息
	// 返回：
	//   - *storage.Position: 位置指针，不存在返回 nil
	Get(key []byte) *storage.Position

	// Delete 删除 key 对应的索引项
	// 返回：
	//   - *storage.Position: 被删除的位置，key 不存在则返回 nil
	Delete(key []byte) *storage.Position

	// Size 返回索引中存活的键数量
	Size() int

	// Close 关闭索引，释放资源
	Close()
}

// IndexType 定义索引类型
// 类型在构造时一次性确定为具体实现，之后不再做运行时判断
type IndexType byte

const (
	// IndexTypeBTree 使用 B 树作为索引（默认）
	// key 按字节字典序有序，为将来的范围扫描留好了口子
	IndexTypeBTree IndexType = iota

	// IndexTypeART 使用自适应基数树作为索引
	IndexTypeART
)

// NewIndex 根据类型初始化索引
func NewIndex(typ IndexType) Index {
	switch typ {
	case IndexTypeBTree:
		return NewBTreeIndex()
	case IndexTypeART:
		return NewARTIndex()
	default:
		panic("unsupported index type")
	}
}
