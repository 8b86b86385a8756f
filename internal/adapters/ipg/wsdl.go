package ipg

import (
	"encoding/xml"
	"fmt"
)

// ServiceDescription is the part of the order WSDL the client relies on
type ServiceDescription struct {
	TargetNamespace string
	Location        string   // SOAP endpoint address
	Operations      []string // portType operation names
}

// HasOperation reports whether the service declares the named operation
func (d *ServiceDescription) HasOperation(name string) bool {
	for _, op := range d.Operations {
		if op == name {
			return true
		}
	}
	return false
}

type wsdlDefinitions struct {
	XMLName         xml.Name       `xml:"definitions"`
	TargetNamespace string         `xml:"targetNamespace,attr"`
	PortTypes       []wsdlPortType `xml:"portType"`
	Services        []wsdlService  `xml:"service"`
}

type wsdlPortType struct {
	Name       string          `xml:"name,attr"`
	Operations []wsdlOperation `xml:"operation"`
}

type wsdlOperation struct {
	Name string `xml:"name,attr"`
}

type wsdlService struct {
	Name  string     `xml:"name,attr"`
	Ports []wsdlPort `xml:"port"`
}

type wsdlPort struct {
	Name    string      `xml:"name,attr"`
	Address wsdlAddress `xml:"address"`
}

type wsdlAddress struct {
	Location string `xml:"location,attr"`
}

// parseServiceDescription extracts the endpoint and operations from a WSDL.
// The first port with an address wins.
func parseServiceDescription(data []byte) (*ServiceDescription, error) {
	var defs wsdlDefinitions
	if err := xml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse wsdl: %w", err)
	}

	desc := &ServiceDescription{TargetNamespace: defs.TargetNamespace}

	for _, pt := range defs.PortTypes {
		for _, op := range pt.Operations {
			desc.Operations = append(desc.Operations, op.Name)
		}
	}

	for _, svc := range defs.Services {
		for _, port := range svc.Ports {
			if port.Address.Location != "" {
				desc.Location = port.Address.Location
				return desc, nil
			}
		}
	}

	return desc, nil
}
