package matching

// StringSet 保留插入顺序的去重字符串集合
type StringSet struct {
	items []string
	index map[string]struct{}
}

func NewStringSet(values ...string) *StringSet {
	s := &StringSet{index: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add 空字符串视为缺失值，直接忽略
func (s *StringSet) Add(v string) {
	if v == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *StringSet) Has(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

func (s *StringSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values 按插入顺序返回副本
func (s *StringSet) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Intersect 按 s 的插入顺序返回同时存在于 other 中的元素
func (s *StringSet) Intersect(other *StringSet) []string {
	if s == nil || other == nil {
		return nil
	}
	var out []string
	for _, v := range s.items {
		if other.Has(v) {
			out = append(out, v)
		}
	}
	return out
}
