package arrowsrc

import (
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arloliu/statfile/source"
)

// pooledColumn exposes a dictionary-encoded Arrow column as source.Pooled.
// Codes are dictionary indices.
type pooledColumn struct {
	chunks
	dict    arrow.Array
	elem    reflect.Type
	refType reflect.Type
}

var _ source.Pooled = (*pooledColumn)(nil)

// newPooled returns a pooled column when every chunk shares one dictionary.
func newPooled(dt *arrow.DictionaryType, arrs []arrow.Array) (*pooledColumn, bool) {
	elem, err := elemType(dt.ValueType)
	if err != nil {
		return nil, false
	}
	refType, ok := indexType(dt.IndexType)
	if !ok {
		return nil, false
	}

	var dict arrow.Array
	for _, a := range arrs {
		d, ok := a.(*array.Dictionary)
		if !ok {
			return nil, false
		}
		if dict == nil {
			dict = d.Dictionary()
			continue
		}
		if !array.Equal(dict, d.Dictionary()) {
			return nil, false
		}
	}
	if dict == nil {
		// no chunks: an empty pool of the declared value type
		dict = array.MakeArrayOfNull(memory.DefaultAllocator, dt.ValueType, 0)
	}

	return &pooledColumn{chunks: newChunks(arrs), dict: dict, elem: elem, refType: refType}, true
}

func indexType(dt arrow.DataType) (reflect.Type, bool) {
	switch dt.ID() { //nolint: exhaustive
	case arrow.INT8:
		return reflect.TypeFor[int8](), true
	case arrow.INT16:
		return reflect.TypeFor[int16](), true
	case arrow.INT32:
		return reflect.TypeFor[int32](), true
	case arrow.INT64:
		return reflect.TypeFor[int64](), true
	case arrow.UINT8:
		return reflect.TypeFor[uint8](), true
	case arrow.UINT16:
		return reflect.TypeFor[uint16](), true
	case arrow.UINT32:
		return reflect.TypeFor[uint32](), true
	case arrow.UINT64:
		return reflect.TypeFor[uint64](), true
	default:
		return nil, false
	}
}

func (p *pooledColumn) Len() int { return p.n }

func (p *pooledColumn) ElemType() reflect.Type { return p.elem }

func (p *pooledColumn) RefType() reflect.Type { return p.refType }

func (p *pooledColumn) IsNull(i int) bool {
	arr, j := p.locate(i)
	if arr.IsNull(j) {
		return true
	}

	return p.dict.IsNull(arr.(*array.Dictionary).GetValueIndex(j))
}

func (p *pooledColumn) Value(i int) any {
	arr, j := p.locate(i)
	return valueAt(p.dict, arr.(*array.Dictionary).GetValueIndex(j))
}

func (p *pooledColumn) Ref(i int) int64 {
	arr, j := p.locate(i)
	return int64(arr.(*array.Dictionary).GetValueIndex(j))
}

func (p *pooledColumn) PoolSize() int { return p.dict.Len() }

// PoolEntry returns code k and its value; a null dictionary slot yields nil.
func (p *pooledColumn) PoolEntry(k int) (int64, any) {
	if p.dict.IsNull(k) {
		return int64(k), nil
	}

	return int64(k), valueAt(p.dict, k)
}
