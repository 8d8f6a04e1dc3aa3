package tiny

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// TinyString is a string field that handles the Tiny API's loose typing.
// Numeric ids and order numbers arrive sometimes as JSON numbers, sometimes
// as strings; absent fields occasionally arrive as null.
type TinyString string

// UnmarshalJSON handles string, number and null values
func (ts *TinyString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*ts = TinyString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*ts = TinyString(n.String())
		return nil
	}

	if string(data) == "null" {
		*ts = ""
		return nil
	}

	return errors.New("TinyString: cannot unmarshal value into string")
}

// String returns the native string value
func (ts TinyString) String() string {
	return string(ts)
}

// TinyFloat is a numeric field that accepts both JSON numbers and numeric
// strings ("10.50" as well as "10,50"). Unparseable values decode to zero.
type TinyFloat float64

// UnmarshalJSON handles number, string and null values
func (tf *TinyFloat) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*tf = TinyFloat(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
		if s == "" {
			*tf = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*tf = 0
			return nil
		}
		*tf = TinyFloat(f)
		return nil
	}

	if string(data) == "null" {
		*tf = 0
		return nil
	}

	return errors.New("TinyFloat: cannot unmarshal value into float")
}

// OrderHeader is the minimal record returned by the order search call
type OrderHeader struct {
	ID TinyString `json:"id"`
}

// Customer carries the buyer identity and shipping address of a remote order
type Customer struct {
	Nome        TinyString `json:"nome"`
	Fone        TinyString `json:"fone"`
	Endereco    TinyString `json:"endereco"`
	Numero      TinyString `json:"numero"`
	Complemento TinyString `json:"complemento"`
	Bairro      TinyString `json:"bairro"`
	CEP         TinyString `json:"cep"`
	Cidade      TinyString `json:"cidade"`
	UF          TinyString `json:"uf"`
}

// ItemEntry wraps one line item (the API nests each item under "item")
type ItemEntry struct {
	Item Item `json:"item"`
}

// Item is one remote line item
type Item struct {
	Codigo        TinyString `json:"codigo"`
	Descricao     TinyString `json:"descricao"`
	Quantidade    TinyFloat  `json:"quantidade"`
	ValorUnitario TinyFloat  `json:"valor_unitario"`
	Desconto      TinyFloat  `json:"desconto"`
	URLImagem     TinyString `json:"url_imagem"`
	IDProduto     TinyString `json:"id_produto"`
}

// OrderDetail is the full remote payload for one order
type OrderDetail struct {
	ID              TinyString  `json:"id"`
	Numero          TinyString  `json:"numero"`
	NumeroEcommerce TinyString  `json:"numero_ecommerce"`
	NomeEcommerce   TinyString  `json:"nome_ecommerce"`
	Cliente         Customer    `json:"cliente"`
	FormaPagamento  TinyString  `json:"forma_pagamento"`
	Situacao        TinyString  `json:"situacao"`
	Itens           []ItemEntry `json:"itens"`
}

// searchEnvelope mirrors the nested response of pedidos.pesquisa.php
type searchEnvelope struct {
	Retorno struct {
		Status  TinyString `json:"status"`
		Pedidos []struct {
			Pedido OrderHeader `json:"pedido"`
		} `json:"pedidos"`
	} `json:"retorno"`
}

// detailEnvelope mirrors the nested response of pedido.obter.php
type detailEnvelope struct {
	Retorno struct {
		Status TinyString   `json:"status"`
		Pedido *OrderDetail `json:"pedido"`
	} `json:"retorno"`
}
