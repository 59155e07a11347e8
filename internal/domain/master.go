package domain

// Master — исполнитель услуг, привязанный к учётной записи пользователя.
type Master struct {
	ID          string
	UserID      string
	Description string
	ServiceIDs  []string
}

// Offers сообщает, оказывает ли мастер услугу с данным идентификатором.
func (m *Master) Offers(serviceID string) bool {
	for _, id := range m.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
