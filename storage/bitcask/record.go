package bitcask

import (
	"encoding/binary"
	"hash/crc32"
)

// RecordStatus 表示记录的状态
type RecordStatus = byte

const (
	// StatusNormal 正常记录
	StatusNormal RecordStatus = 1
	// StatusDeleted 墓碑记录：key 被逻辑删除，value 内容无语义但照常编码和校验
	StatusDeleted RecordStatus = 2
)

// 头部的最大可能长度：crc(4) + status(1) + keySize 变长整数(最多 5) + valueSize 变长整数(最多 5)
const maxRecordHeaderSize = 4 + 1 + 2*binary.MaxVarintLen32

// LogRecord 写入到数据文件的逻辑记录
// 数据文件是追加写入的，记录一旦编码落盘就不再改动：
// 同一个 key 的后续状态由追加新记录表示，从不原地改写字节
type LogRecord struct {
	Key    []byte
	Value  []byte
	Status RecordStatus
}

// logRecordHeader 记录头部的解析结果
type logRecordHeader struct {
	crc       uint32       // 对 crc 字段之后所有字节计算的 CRC-32 校验和
	status    RecordStatus // 记录状态
	keySize   uint32       // key 长度
	valueSize uint32       // value 长度
}

// EncodeLogRecord 将 LogRecord 编码为落盘的字节布局
// 格式：| crc (4B, 小端) | status (1B) | keySize (uvarint) | valueSize (uvarint) | key | value |
// CRC-32 使用 IEEE 多项式，覆盖 crc 字段之后的全部字节
// 纯函数，同一条记录编码结果完全确定
//
// 返回：
//   - []byte: 编码后的字节
//   - uint32: 编码后的总长度
func EncodeLogRecord(rec *LogRecord) ([]byte, uint32) {
	header := make([]byte, maxRecordHeaderSize)
	header[4] = rec.Status

	var index = 5
	index += binary.PutUvarint(header[index:], uint64(len(rec.Key)))
	index += binary.PutUvarint(header[index:], uint64(len(rec.Value)))

	var size = index + len(rec.Key) + len(rec.Value)
	encBytes := make([]byte, size)

	copy(encBytes[:index], header[:index])
	copy(encBytes[index:], rec.Key)
	copy(encBytes[index+len(rec.Key):], rec.Value)

	crc := crc32.ChecksumIEEE(encBytes[4:])
	binary.LittleEndian.PutUint32(encBytes[:4], crc)

	return encBytes, uint32(size)
}

// decodeLogRecordHeader 从字节切片解析记录头部
// 只消费每个变长整数实际占用的字节数
// 字节数不足以构成头部时返回 nil，由调用方解释为日志末尾
//
// 返回：
//   - *logRecordHeader: 头部解析结果
//   - uint32: 头部实际占用的字节数
func decodeLogRecordHeader(buf []byte) (*logRecordHeader, uint32) {
	if len(buf) <= 4 {
		return nil, 0
	}

	header := &logRecordHeader{
		crc:    binary.LittleEndian.Uint32(buf[:4]),
		status: buf[4],
	}

	var index = 5
	keySize, n := binary.Uvarint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	header.keySize = uint32(keySize)
	index += n

	valueSize, n := binary.Uvarint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	header.valueSize = uint32(valueSize)
	index += n

	return header, uint32(index)
}

// getLogRecordCRC 计算记录的 CRC 校验和
// 参数：
//   - rec: 记录
//   - header: 头部中 crc 字段之后的字节（status + 两个长度的变长整数）
//
// 返回：
//   - uint32: 对 {status, 长度字段, key, value} 计算的校验和
func getLogRecordCRC(rec *LogRecord, header []byte) uint32 {
	if rec == nil {
		return 0
	}
	crc := crc32.ChecksumIEEE(header)
	crc = crc32.Update(crc, crc32.IEEETable, rec.Key)
	crc = crc32.Update(crc, crc32.IEEETable, rec.Value)
	return crc
}
