package hmi

// AlarmList is the HMI's alarm table as an ordered name to status mapping.
type AlarmList struct {
	names  []string
	status map[string]string
}

// BuildAlarmList converts alarm records into the ordered list the CSV log
// and diagnostics consume. Each value is rendered as "Status: <value>".
func BuildAlarmList(records []Record) *AlarmList {
	list := &AlarmList{status: make(map[string]string)}
	for _, rec := range records {
		if _, seen := list.status[rec.Name]; !seen {
			list.names = append(list.names, rec.Name)
		}
		list.status[rec.Name] = "Status: " + rec.Status
	}
	return list
}

// Names returns the alarm names in document order.
func (l *AlarmList) Names() []string {
	return l.names
}

// Values returns the rendered statuses in document order.
func (l *AlarmList) Values() []string {
	values := make([]string, len(l.names))
	for i, name := range l.names {
		values[i] = l.status[name]
	}
	return values
}

// Len reports the number of alarms.
func (l *AlarmList) Len() int {
	return len(l.names)
}
