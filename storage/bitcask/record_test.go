package bitcask

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 测试编码和头部解码能否正确往返
func TestEncodeDecodeLogRecord(t *testing.T) {
	testRoundTrip := func(t *testing.T, rec *LogRecord) {
		// 1. 编码 LogRecord
		encBuf, encSize := EncodeLogRecord(rec)
		assert.NotNil(t, encBuf)
		assert.Equal(t, int(encSize), len(encBuf))
		assert.Greater(t, encSize, uint32(5))

		// 2. 解码头部
		header, headerSize := decodeLogRecordHeader(encBuf)
		assert.NotNil(t, header)
		assert.Greater(t, headerSize, uint32(0))

		// 3. 验证头部信息是否匹配
		assert.Equal(t, rec.Status, header.status)
		assert.Equal(t, uint32(len(rec.Key)), header.keySize)
		assert.Equal(t, uint32(len(rec.Value)), header.valueSize)

		// 4. 验证 CRC 校验和
		crc := getLogRecordCRC(rec, encBuf[crc32.Size:headerSize])
		assert.Equal(t, header.crc, crc)

		// 5. 验证总长度
		assert.Equal(t, encSize, headerSize+header.keySize+header.valueSize)
	}

	t.Run("normal record", func(t *testing.T) {
		rec := &LogRecord{
			Key:    []byte("name"),
			Value:  []byte("casklog"),
			Status: StatusNormal,
		}
		testRoundTrip(t, rec)
	})

	t.Run("deleted record", func(t *testing.T) {
		rec := &LogRecord{
			Key:    []byte("name"),
			Value:  tombstoneValue,
			Status: StatusDeleted,
		}
		testRoundTrip(t, rec)
	})

	t.Run("large key and value", func(t *testing.T) {
		rec := &LogRecord{
			Key:    make([]byte, 1<<10),
			Value:  make([]byte, 1<<16),
			Status: StatusNormal,
		}
		testRoundTrip(t, rec)
	})
}

// 验证最小记录的精确字节布局
// {key:"k1", value:"v1", Normal} 编码后应为 11 字节：
// crc(4) + status(1) + keySize 变长整数(1) + valueSize 变长整数(1) + key(2) + value(2)
func TestEncodeLogRecord_ExactLayout(t *testing.T) {
	rec := &LogRecord{
		Key:    []byte("k1"),
		Value:  []byte("v1"),
		Status: StatusNormal,
	}

	encBuf, encSize := EncodeLogRecord(rec)
	assert.Equal(t, uint32(11), encSize)

	// 逐字段验证
	assert.Equal(t, StatusNormal, encBuf[4])
	assert.Equal(t, byte(2), encBuf[5]) // keySize = 2，单字节变长整数
	assert.Equal(t, byte(2), encBuf[6]) // valueSize = 2
	assert.Equal(t, []byte("k1"), encBuf[7:9])
	assert.Equal(t, []byte("v1"), encBuf[9:11])

	// crc 小端存放，覆盖 crc 字段之后的全部字节
	storedCRC := binary.LittleEndian.Uint32(encBuf[:4])
	assert.Equal(t, crc32.ChecksumIEEE(encBuf[4:]), storedCRC)
}

// 编码是纯函数：同一条记录两次编码结果完全一致
func TestEncodeLogRecord_Deterministic(t *testing.T) {
	rec := &LogRecord{
		Key:    []byte("stable"),
		Value:  []byte("bytes"),
		Status: StatusNormal,
	}
	buf1, size1 := EncodeLogRecord(rec)
	buf2, size2 := EncodeLogRecord(rec)
	assert.Equal(t, buf1, buf2)
	assert.Equal(t, size1, size2)
}

// 头部字节不足时解码返回 nil，由上层解释为日志末尾
func TestDecodeLogRecordHeader_Short(t *testing.T) {
	header, size := decodeLogRecordHeader([]byte{1, 2, 3, 4})
	assert.Nil(t, header)
	assert.Equal(t, uint32(0), size)

	// 全零字节：crc 和 status 可读，但长度字段解析出 0
	header, _ = decodeLogRecordHeader(make([]byte, 7))
	assert.NotNil(t, header)
	assert.Equal(t, uint32(0), header.keySize)
	assert.Equal(t, uint32(0), header.valueSize)
}
