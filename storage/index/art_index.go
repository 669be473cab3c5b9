package index

import (
	"sync"

	"github.com/plar/go-adaptive-radix-tree"

	"github.com/wanglei1037/casklog/storage"
)

// ARTIndex 是基于自适应基数树（Adaptive Radix Tree）的内存索引实现
// 基数树按 key 的字节前缀组织，天然保持字节字典序
// 与 BTreeIndex 一样用读写锁保护，锁的粒度和语义完全一致
type ARTIndex struct {
	tree art.Tree
	mu   *sync.RWMutex
}

// NewARTIndex 创建一个新的 ART 索引实例
func NewARTIndex() *ARTIndex {
	return &ARTIndex{
		tree: art.New(),
		mu:   new(sync.RWMutex),
	}
}

// Put 写入 key 对应的位置信息，返回被覆盖的旧位置
func (idx *ARTIndex) Put(key []byte, pos *storage.Position) *storage.Position {
	idx.mu.Lock()
	oldValue, updated := idx.tree.Insert(art.Key(key), pos)
	idx.mu.Unlock()
	if !updated {
		return nil
	}
	return oldValue.(*storage.Position)
}

// Get 根据 key 取出位置信息，不存在返回 nil
func (idx *ARTIndex) Get(key []byte) *storage.Position {
	idx.mu.RLock()
	value, found := idx.tree.Search(art.Key(key))
	idx.mu.RUnlock()
	if !found {
		return nil
	}
	return value.(*storage.Position)
}

// Delete 删除 key 对应的索引项，返回被删除的位置
func (idx *ARTIndex) Delete(key []byte) *storage.Position {
	idx.mu.Lock()
	oldValue, deleted := idx.tree.Delete(art.Key(key))
	idx.mu.Unlock()
	if !deleted {
		return nil
	}
	return oldValue.(*storage.Position)
}

// Size 返回 ART 索引中的键数量
func (idx *ARTIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Size()
}

// Close 关闭 ART 索引
func (idx *ARTIndex) Close() {
	// ART 树没有需要关闭的资源，GC 会自动回收
}

// 确保 ARTIndex 实现了 Index 接口
var _ Index = (*ARTIndex)(nil)
