package index

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanglei1037/casklog/storage"
)

func TestBTreeIndex_Put(t *testing.T) {
	bt := NewBTreeIndex()
	pos1 := &storage.Position{FileID: 1, Offset: 10, Size: 100}
	pos2 := &storage.Position{FileID: 2, Offset: 20, Size: 200}

	// 新键返回 nil
	res := bt.Put([]byte("k1"), pos1)
	assert.Nil(t, res)

	// 覆盖写返回之前的位置
	res = bt.Put([]byte("k1"), pos2)
	assert.Equal(t, pos1, res)

	res = bt.Put([]byte("k1"), pos1)
	assert.Equal(t, pos2, res)
}

func TestBTreeIndex_Get(t *testing.T) {
	bt := NewBTreeIndex()
	pos1 := &storage.Position{FileID: 1, Offset: 10, Size: 100}

	assert.Nil(t, bt.Get([]byte("missing")))

	bt.Put([]byte("k1"), pos1)
	assert.Equal(t, pos1, bt.Get([]byte("k1")))
}

func TestBTreeIndex_Delete(t *testing.T) {
	bt := NewBTreeIndex()
	pos := &storage.Position{FileID: 1, Offset: 10, Size: 100}

	// 删除不存在的键返回 nil，不报错
	assert.Nil(t, bt.Delete([]byte("missing")))

	bt.Put([]byte("k1"), pos)
	res := bt.Delete([]byte("k1"))
	assert.Equal(t, pos, res)
	assert.Nil(t, bt.Get([]byte("k1")))
}

// 完整语义序列：put 新键 / put 覆盖 / get / delete / size 的状态演进
func TestBTreeIndex_Semantics(t *testing.T) {
	bt := NewBTreeIndex()
	k := []byte("k")
	p1 := &storage.Position{FileID: 1, Offset: 0, Size: 11}
	p2 := &storage.Position{FileID: 1, Offset: 11, Size: 11}

	assert.Equal(t, 0, bt.Size())

	assert.Nil(t, bt.Put(k, p1))
	assert.Equal(t, 1, bt.Size())

	assert.Equal(t, p1, bt.Put(k, p2))
	assert.Equal(t, 1, bt.Size())

	assert.Equal(t, p2, bt.Get(k))

	assert.Equal(t, p2, bt.Delete(k))
	assert.Nil(t, bt.Get(k))
	assert.Equal(t, 0, bt.Size())
}

// 并发测试，推荐用 -race 运行：go test -race -run ^TestBTreeIndex_Concurrent$
func TestBTreeIndex_Concurrent(t *testing.T) {
	t.Parallel()
	bt := NewBTreeIndex()
	wg := new(sync.WaitGroup)
	const n = 2000

	// 阶段一：并发写入
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := []byte("key-" + strconv.Itoa(i))
			bt.Put(key, &storage.Position{FileID: uint32(i), Offset: uint32(i)})
		}(i)
	}
	wg.Wait()

	// 阶段二：并发读取和删除
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := []byte("key-" + strconv.Itoa(i))

			// 读写并发阶段只验证没有数据竞争，不校验返回值
			_ = bt.Get(key)

			if i%2 == 0 {
				bt.Delete(key)
			}
		}(i)
	}
	wg.Wait()

	// 阶段三：最终校验
	for i := 0; i < n; i++ {
		key := []byte("key-" + strconv.Itoa(i))
		pos := bt.Get(key)
		if i%2 == 0 {
			assert.Nil(t, pos, "偶数 key %s 应该已被删除", key)
		} else {
			assert.NotNil(t, pos, "奇数 key %s 应该仍然存在", key)
		}
	}
	assert.Equal(t, n/2, bt.Size())
}
