package rdbms

import "strings"

// SchemaTable identifies a source object as [<schema>.]<table>.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	}
	return SchemaTable{schema + "." + table}
}

func (st *SchemaTable) GetTable() string {
	sep := "."
	i := strings.Index(st.SchemaTable, sep)
	if i < 0 { // if we have just a table...
		return st.SchemaTable
	} // else we have schema.table...
	return st.SchemaTable[i+len(sep):]
}

func (st *SchemaTable) GetSchema() string {
	sep := "."
	i := strings.Index(st.SchemaTable, sep)
	if i < 0 { // if we have just a table...
		return ""
	} // else we have schema.table...
	return st.SchemaTable[:i]
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}
