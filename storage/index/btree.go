package index

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/wanglei1037/casklog/storage"
)

// BTreeIndex 是基于 google/btree 的有序内存索引实现
// key 按原始字节做字典序比较
// btree 本身不保证并发安全，这里用一把读写锁把写操作串行化：
// Put 和 Delete 拿独占锁，Get 和 Size 拿共享锁
type BTreeIndex struct {
	tree *btree.BTree
	mu   *sync.RWMutex
}

// Item 是 B 树中的一个节点元素
type Item struct {
	key []byte
	pos *storage.Position
}

// Less 按 key 的字节字典序比较两个元素
func (it *Item) Less(other btree.Item) bool {
	return bytes.Compare(it.key, other.(*Item).key) == -1
}

// NewBTreeIndex 创建一个新的 B 树索引实例
func NewBTreeIndex() *BTreeIndex {
	return &BTreeIndex{
		tree: btree.New(32),
		mu:   new(sync.RWMutex),
	}
}

// Put 写入 key 对应的位置信息，返回被覆盖的旧位置
func (bt *BTreeIndex) Put(key []byte, pos *storage.Position) *storage.Position {
	it := &Item{key: key, pos: pos}
	bt.mu.Lock()
	oldItem := bt.tree.ReplaceOrInsert(it)
	bt.mu.Unlock()
	if oldItem == nil {
		return nil
	}
	return oldItem.(*Item).pos
}

// Get 根据 key 取出位置信息，不存在返回 nil
func (bt *BTreeIndex) Get(key []byte) *storage.Position {
	it := &Item{key: key}
	bt.mu.RLock()
	btreeItem := bt.tree.Get(it)
	bt.mu.RUnlock()
	if btreeItem == nil {
		return nil
	}
	return btreeItem.(*Item).pos
}

// Delete 删除 key 对应的索引项，返回被删除的位置
func (bt *BTreeIndex) Delete(key []byte) *storage.Position {
	it := &Item{key: key}
	bt.mu.Lock()
	oldItem := bt.tree.Delete(it)
	bt.mu.Unlock()
	if oldItem == nil {
		return nil
	}
	return oldItem.(*Item).pos
}

// Size 返回索引中存活的键数量
func (bt *BTreeIndex) Size() int {
	bt.mu.RLock()
	defer bt.mu.RUnlock()
	return bt.tree.Len()
}

// Close 关闭 B 树索引
func (bt *BTreeIndex) Close() {
	// B 树没有需要显式释放的资源，交给 GC 回收
}

// 确保 BTreeIndex 实现了 Index 接口
var _ Index = (*BTreeIndex)(nil)
