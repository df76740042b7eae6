package dashboard

// RowsPerPageOptions 是页大小的可选档位。
var RowsPerPageOptions = []int{10, 25, 100}

// DefaultRowsPerPage 是未指定或非法页大小时的回退值。
const DefaultRowsPerPage = 10

// Cursor 是客户端持有的分页游标，不做持久化。
// Page 从 0 开始，不校验上界：越界页合法地渲染为空窗口。
type Cursor struct {
	Page        int
	RowsPerPage int
}

// NewCursor 返回指向第一页、默认页大小的游标。
func NewCursor() Cursor {
	return Cursor{Page: 0, RowsPerPage: DefaultRowsPerPage}
}

// SetPage 直接设置页号，负值归零。
func (c *Cursor) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	c.Page = page
}

// SetRowsPerPage 采用新的页大小并重置回第一页。
// 不在档位表中的值回退为默认页大小。
func (c *Cursor) SetRowsPerPage(size int) {
	c.RowsPerPage = DefaultRowsPerPage
	for _, option := range RowsPerPageOptions {
		if size == option {
			c.RowsPerPage = size
			break
		}
	}
	c.Page = 0
}

// Window 返回当前页在长度为 total 的列表中的 [start, end) 区间，
// 越界时收敛到空区间。
func (c Cursor) Window(total int) (start, end int) {
	size := c.RowsPerPage
	if size <= 0 {
		size = DefaultRowsPerPage
	}

	start = c.Page * size
	if start > total {
		start = total
	}
	if start < 0 {
		start = 0
	}

	end = start + size
	if end > total {
		end = total
	}

	return start, end
}

// PageOf 按游标切出可见窗口；越界返回空切片，绝不越界访问。
func PageOf[T any](items []T, c Cursor) []T {
	start, end := c.Window(len(items))
	return items[start:end]
}
